package ompopt

import (
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/rewrite"
)

// ParallelForInterchange hoists an omp.parallel that is the whole body of a
// result-free scf.for out of the loop:
//
//	scf.for { omp.parallel { B } }
//
// becomes
//
//	omp.parallel { scf.for { B; omp.barrier } }
//
// The barrier keeps iterations apart the way re-entering the region did.
type ParallelForInterchange struct{}

func (ParallelForInterchange) Name() string  { return "parallel-for-interchange" }
func (ParallelForInterchange) Root() ir.Kind { return ir.KindParallel }

func (ParallelForInterchange) MatchAndRewrite(p ir.Op, rw *rewrite.Rewriter) bool {
	return interchange(rw.Func, p, ir.KindFor, true)
}

// ParallelIfInterchange hoists an omp.parallel that is the whole then-body
// of a result-free scf.if with an empty else:
//
//	scf.if %c { omp.parallel { B } }
//
// becomes
//
//	omp.parallel { scf.if %c { B } }
type ParallelIfInterchange struct{}

func (ParallelIfInterchange) Name() string  { return "parallel-if-interchange" }
func (ParallelIfInterchange) Root() ir.Kind { return ir.KindParallel }

func (ParallelIfInterchange) MatchAndRewrite(p ir.Op, rw *rewrite.Rewriter) bool {
	return interchange(rw.Func, p, ir.KindIf, false)
}

// interchange swaps p with its parent op of kind owner. p must be the only
// op besides the terminator in the parent's single body block.
func interchange(f *ir.Func, p ir.Op, owner ir.Kind, barrier bool) bool {
	b := f.ParentBlock(p)
	if f.NumOps(b) != 2 {
		return false
	}
	parent := f.ParentOp(p)
	if parent.IsNil() || f.Kind(parent) != owner || f.NumResults(parent) != 0 {
		return false
	}
	if f.NumBlocks(f.BlockRegion(b)) != 1 {
		return false
	}
	if owner == ir.KindIf && (f.BlockRegion(b) != f.Region(parent, 0) || !emptyElse(f, parent)) {
		return false
	}
	body, ok := singleBlock(f, p)
	if !ok {
		return false
	}

	term := f.Terminator(body)
	f.MoveBefore(p, parent)
	contents := f.SplitBlock(body, f.FirstOp(body))
	f.MergeBlockBefore(contents, f.FirstOp(b), nil)
	if barrier {
		f.InsertBefore(f.Create(ir.OpSpec{Kind: ir.KindBarrier}), f.Terminator(b))
	}
	newTerm := f.Clone(term)
	f.InsertAtEnd(newTerm, body)
	f.Erase(term)
	f.MoveBefore(parent, newTerm)
	return true
}

// emptyElse reports whether the else region of an scf.if has no blocks or
// a single block holding only its terminator.
func emptyElse(f *ir.Func, o ir.Op) bool {
	r := f.Region(o, 1)
	switch f.NumBlocks(r) {
	case 0:
		return true
	case 1:
		return f.NumOps(f.Front(r)) <= 1
	}
	return false
}
