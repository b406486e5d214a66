package rewrite

import "github.com/wippyai/ompopt/ir"

// worklist is a LIFO of ops with set semantics. Membership is tracked per
// arena slot; entries whose handle went stale, or that were removed, are
// dropped when popped.
type worklist struct {
	f   *ir.Func
	in  *BitSet
	ops []ir.Op
}

func newWorklist(f *ir.Func) *worklist {
	return &worklist{f: f, in: NewBitSet(f.OpCapacity())}
}

// push adds o unless it is already queued.
func (w *worklist) push(o ir.Op) {
	if o.IsNil() || !w.f.Live(o) || w.in.Has(o.Index()) {
		return
	}
	w.in.Set(o.Index())
	w.ops = append(w.ops, o)
}

// remove drops o from the queue. The slice entry stays until popped.
func (w *worklist) remove(o ir.Op) {
	w.in.Clear(o.Index())
}

func (w *worklist) pop() (ir.Op, bool) {
	for len(w.ops) > 0 {
		o := w.ops[len(w.ops)-1]
		w.ops = w.ops[:len(w.ops)-1]
		// A stale entry's slot may be queued again under a new
		// generation; leave its bit alone.
		if !w.f.Live(o) || !w.in.Has(o.Index()) {
			continue
		}
		w.in.Clear(o.Index())
		return o, true
	}
	return ir.Op{}, false
}

func (w *worklist) len() int {
	return w.in.Count()
}

func (w *worklist) reset() {
	w.ops = w.ops[:0]
	w.in.Reset()
}
