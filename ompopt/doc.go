// Package ompopt reduces fork-join overhead in IR holding omp.parallel
// regions.
//
// Three rewrites run to a fixpoint under the rewrite driver:
//   - CombineParallel fuses a parallel region with the one preceding it in
//     the same block, separated by omp.barrier, moving read-only ops in
//     between into the later region
//   - ParallelForInterchange turns for { parallel { B } } into
//     parallel { for { B; barrier } } for result-free loops
//   - ParallelIfInterchange turns if { parallel { B } } into
//     parallel { if { B } } for result-free conditionals with an empty else
//
// Basic usage:
//
//	f, err := irtext.ParseFunc(src)
//	if err != nil {
//		return err
//	}
//	res, err := ompopt.Run(f, ompopt.DefaultConfig())
//
// Rewrites never fail: a pattern that does not apply leaves the IR alone.
// Hitting the iteration cap is reported through Result.Converged and is not
// an error.
package ompopt
