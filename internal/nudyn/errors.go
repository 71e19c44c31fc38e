package nudyn

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig indicates a layout that cannot be analyzed. It is reported
	// before any event is processed.
	ErrConfig = errors.New("nudyn: invalid configuration")

	// ErrBinOutOfRange indicates a bin index outside the configured layout.
	ErrBinOutOfRange = errors.New("nudyn: bin index out of configured range")

	// ErrLayoutMismatch indicates two accumulators or a count buffer built
	// for different layouts.
	ErrLayoutMismatch = errors.New("nudyn: layout mismatch")
)

// BinError wraps an error with the offending bin coordinates.
type BinError struct {
	ActivityBin int
	RapidityBin int
	Wrapped     error
}

func (e *BinError) Error() string {
	return fmt.Sprintf("%v: activity=%d rapidity=%d", e.Wrapped, e.ActivityBin, e.RapidityBin)
}

func (e *BinError) Unwrap() error {
	return e.Wrapped
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
