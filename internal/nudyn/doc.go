// Package nudyn accumulates factorial moments of identified-particle
// multiplicities and derives their cumulants, normalized correlators and the
// two-species nu-dynamic observable.
//
// The pipeline per accepted event is:
//
//   - [Counter]: per species, the number of accepted particles inside each
//     nested rapidity window |y| < Y_k
//   - [Accumulator]: falling-factorial products for every combination of
//     order 1..4, folded into running means binned by (activity, window)
//   - [Engine]: after accumulation, F2..F4 cumulants, R2..R4 correlators and
//     nu-dynamic for every bin
//
// [Analyzer] owns one run: configuration, the counter and the accumulator.
//
// # Example
//
//	an, _ := nudyn.NewAnalyzer(layout, filters, event.AcceptAll{}, logger)
//	_ = an.Run(ctx, src)
//	derived := an.Finalize(0)
//	r2 := derived.Cell(0, 3).Correlator(0, 1)
//
// # Thread Safety
//
// Analyzer and Accumulator instances are NOT thread-safe. [RunEnsemble]
// processes independent sources in parallel with one accumulator per source
// and merges them afterwards.
package nudyn
