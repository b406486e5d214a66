package rewrite

import "github.com/wippyai/ompopt/ir"

// Pattern is a local rewrite rooted at one op.
//
// MatchAndRewrite either mutates the IR through rw and returns true, or
// leaves it untouched and returns false. Root restricts the kinds the
// driver offers to the pattern; ir.KindInvalid matches every op.
type Pattern interface {
	Name() string
	Root() ir.Kind
	MatchAndRewrite(o ir.Op, rw *Rewriter) bool
}

// Rewriter is the mutation handle passed to patterns. Every edit made
// through the embedded Func is reported to the driver.
type Rewriter struct {
	*ir.Func
	edits int
}

// Edits returns the number of structural edits observed so far.
func (rw *Rewriter) Edits() int {
	return rw.edits
}

// Event describes one successful rewrite.
type Event struct {
	Pattern   string
	Root      ir.Kind
	Iteration int
	Rewrites  int
}

// Observer is called after every successful rewrite, with the IR in its
// post-rewrite state.
type Observer func(f *ir.Func, ev Event)
