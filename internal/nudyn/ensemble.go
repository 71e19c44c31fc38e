package nudyn

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/san-kum/nudyn/internal/event"
)

// RunEnsemble analyzes independent sources concurrently, one Analyzer per
// source, and merges them in source order. The species filters must be safe
// for concurrent reads.
func RunEnsemble(ctx context.Context, layout Layout, species []event.SpeciesFilter, filter event.EventFilter, sources []event.Source, log *zap.Logger) (*Analyzer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(sources) == 0 {
		return NewAnalyzer(layout, species, filter, log)
	}

	analyzers := make([]*Analyzer, len(sources))
	for i := range sources {
		an, err := NewAnalyzer(layout, species, filter, log.With(zap.Int("source", i)))
		if err != nil {
			return nil, err
		}
		analyzers[i] = an
	}

	errs := make([]error, len(sources))
	var wg sync.WaitGroup
	for i := range sources {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			errs[idx] = analyzers[idx].Run(ctx, sources[idx])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	merged := analyzers[0]
	merged.log = log
	for _, an := range analyzers[1:] {
		if err := merged.Merge(an); err != nil {
			return nil, err
		}
	}
	return merged, nil
}
