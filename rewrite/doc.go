// Package rewrite provides a greedy pattern-rewrite driver over ir.Func.
//
// Patterns are local rewrites rooted at one op. The Driver runs them to a
// fixpoint with a worklist fed by the function's edit listener:
//
//	d := rewrite.NewDriver(rewrite.Config{MaxIterations: 47, EraseDeadOps: true},
//		patternA, patternB)
//	res := d.Run(f)
//	if !res.Converged {
//		// bound reached; f holds every rewrite applied so far
//	}
//
// Ops erased by a rewrite leave the worklist immediately, and handles carry
// a generation, so a pattern is never offered an op that no longer exists.
package rewrite
