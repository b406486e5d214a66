package ompopt

import (
	"go.uber.org/zap"

	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/ompopt/internal/analysis"
	"github.com/wippyai/ompopt/rewrite"
)

// CombineParallel merges an omp.parallel with an omp.parallel preceding it
// in the same block:
//
//	omp.parallel { A }
//	omp.parallel { B }
//
// becomes
//
//	omp.parallel { A; omp.barrier; B }
//
// Read-only ops between the two whose results are only used inside the
// later region are moved to the front of it first. The scan stops at the
// first op that cannot move.
type CombineParallel struct{}

func (CombineParallel) Name() string  { return "combine-parallel" }
func (CombineParallel) Root() ir.Kind { return ir.KindParallel }

func (CombineParallel) MatchAndRewrite(p ir.Op, rw *rewrite.Rewriter) bool {
	f := rw.Func
	q := f.PrevOp(p)
	if q.IsNil() {
		return false
	}
	if !analysis.HasUnnestedParallel(f, p) {
		return false
	}
	body, ok := singleBlock(f, p)
	if !ok {
		return false
	}

	moved := false
	for f.Kind(q) != ir.KindParallel {
		if !analysis.IsReadOnly(f, q) || !analysis.UsesWithin(f, q, p) {
			return moved
		}
		prev := f.PrevOp(q)
		Logger().Debug("moving read-only op into parallel region", zap.String("op", f.OpName(q)))
		clone := f.Clone(q)
		f.InsertAtStart(clone, body)
		f.ReplaceOp(q, f.Results(clone))
		moved = true
		if prev.IsNil() {
			return true
		}
		q = prev
	}

	prevBody, ok := singleBlock(f, q)
	if !ok {
		return moved
	}
	term := f.Terminator(prevBody)
	f.InsertBefore(f.Create(ir.OpSpec{Kind: ir.KindBarrier}), term)
	f.Erase(term)
	f.MergeBlocks(body, prevBody, nil)
	f.Erase(p)
	return true
}

// singleBlock returns the body block of a parallel region holding exactly
// one block.
func singleBlock(f *ir.Func, p ir.Op) (ir.Block, bool) {
	r := f.Region(p, 0)
	if f.NumBlocks(r) != 1 {
		return ir.Block{}, false
	}
	return f.Front(r), true
}
