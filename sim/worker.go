package sim

import (
	"iter"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
)

// worker executes ops for one team member, or for the sequential code
// outside any parallel region when yield is nil.
type worker struct {
	m     *machine
	env   map[ir.Value]int64
	yield func(struct{}) bool
	err   error
	id    int
	// nested counts enclosing parallel regions run inline by this worker.
	nested int
}

// member is a suspended worker coroutine.
type member struct {
	w    *worker
	next func() (struct{}, bool)
	stop func()
	done bool
}

func newMember(w *worker, body ir.Block) *member {
	seq := func(yield func(struct{}) bool) {
		w.yield = yield
		_, w.err = w.block(body)
	}
	next, stop := iter.Pull(iter.Seq[struct{}](seq))
	return &member{w: w, next: next, stop: stop}
}

// errStopped unwinds a worker whose team was torn down at a barrier.
var errStopped = errors.New(errors.PhaseSimulate, errors.KindInvariant).
	Detail("worker stopped at barrier").
	Build()

func (w *worker) get(v ir.Value) int64 {
	return w.env[v]
}

func (w *worker) set(v ir.Value, x int64) {
	w.env[v] = x
}

// region runs a region and returns the operands of its terminator.
func (w *worker) region(r ir.Region) ([]int64, error) {
	b, err := singleBlock(w.m.f, r)
	if err != nil || b.IsNil() {
		return nil, err
	}
	return w.block(b)
}

func (w *worker) block(b ir.Block) ([]int64, error) {
	f := w.m.f
	for _, o := range f.BlockOps(b) {
		if f.Kind(o).IsTerminator() {
			vals := make([]int64, 0, f.NumOperands(o))
			for _, v := range f.Operands(o) {
				vals = append(vals, w.get(v))
			}
			return vals, nil
		}
		if err := w.op(o); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (w *worker) op(o ir.Op) error {
	f := w.m.f
	if err := w.m.step(); err != nil {
		return err
	}
	switch f.Kind(o) {
	case ir.KindConstant:
		w.set(f.Result(o, 0), f.Attr(o))
	case ir.KindThreadNum:
		id := int64(w.id)
		if w.nested > 0 {
			id = 0
		}
		w.set(f.Result(o, 0), id)
	case ir.KindAdd, ir.KindSub, ir.KindMul, ir.KindCmpLT:
		return w.arith(o)
	case ir.KindLoad:
		c, err := w.cell(o, 0)
		if err != nil {
			return err
		}
		w.set(f.Result(o, 0), w.m.mem[c])
	case ir.KindStore:
		if f.NumOperands(o) < 2 {
			return errors.InvalidStructure(errors.PhaseSimulate, f.OpName(o), "expects a value and a memref")
		}
		c, err := w.cell(o, 1)
		if err != nil {
			return err
		}
		w.m.mem[c] = w.get(f.Operand(o, 0))
	case ir.KindAlloc:
		w.m.next++
		w.set(f.Result(o, 0), w.m.next)
	case ir.KindDealloc:
		if f.NumOperands(o) < 1 {
			return errors.InvalidStructure(errors.PhaseSimulate, f.OpName(o), "expects a memref")
		}
		w.m.freed[w.get(f.Operand(o, 0))] = true
	case ir.KindBarrier:
		if w.yield == nil || w.nested > 0 {
			return nil
		}
		if !w.yield(struct{}{}) {
			return errStopped
		}
	case ir.KindParallel:
		if w.yield == nil && w.nested == 0 {
			return w.m.fork(o, w.env)
		}
		w.nested++
		_, err := w.region(f.Region(o, 0))
		w.nested--
		return err
	case ir.KindFor:
		return w.loop(o)
	case ir.KindIf:
		r := f.Region(o, 0)
		if w.get(f.Operand(o, 0)) == 0 {
			r = f.Region(o, 1)
		}
		vals, err := w.region(r)
		if err != nil {
			return err
		}
		return w.bind(o, vals)
	case ir.KindExecute:
		vals, err := w.region(f.Region(o, 0))
		if err != nil {
			return err
		}
		return w.bind(o, vals)
	default:
		return errors.Unsupported(errors.PhaseSimulate, f.OpName(o))
	}
	return nil
}

func (w *worker) arith(o ir.Op) error {
	f := w.m.f
	if f.NumOperands(o) != 2 {
		return errors.InvalidStructure(errors.PhaseSimulate, f.OpName(o), "expects two operands")
	}
	a, b := w.get(f.Operand(o, 0)), w.get(f.Operand(o, 1))
	var x int64
	switch f.Kind(o) {
	case ir.KindAdd:
		x = a + b
	case ir.KindSub:
		x = a - b
	case ir.KindMul:
		x = a * b
	case ir.KindCmpLT:
		if a < b {
			x = 1
		}
	}
	w.set(f.Result(o, 0), x)
	return nil
}

// cell resolves the memref operand at i and its optional first index.
func (w *worker) cell(o ir.Op, i int) (Cell, error) {
	f := w.m.f
	if f.NumOperands(o) <= i {
		return Cell{}, errors.InvalidStructure(errors.PhaseSimulate, f.OpName(o), "expects a memref operand")
	}
	c := Cell{Buf: w.get(f.Operand(o, i))}
	if f.NumOperands(o) > i+1 {
		c.Index = w.get(f.Operand(o, i+1))
	}
	if w.m.freed[c.Buf] {
		return Cell{}, errors.New(errors.PhaseSimulate, errors.KindInvalidInput).
			Op(f.OpName(o)).
			Detail("access to deallocated buffer %d", c.Buf).
			Build()
	}
	return c, nil
}

// loop runs scf.for: lower bound, upper bound, step, then iter args.
func (w *worker) loop(o ir.Op) error {
	f := w.m.f
	ops := f.Operands(o)
	if len(ops) < 3 {
		return errors.InvalidStructure(errors.PhaseSimulate, f.OpName(o), "expects bounds and a step")
	}
	lb, ub, step := w.get(ops[0]), w.get(ops[1]), w.get(ops[2])
	if step <= 0 {
		return errors.New(errors.PhaseSimulate, errors.KindInvalidInput).
			Op(f.OpName(o)).
			Detail("step must be positive, got %d", step).
			Build()
	}
	iters := make([]int64, 0, len(ops)-3)
	for _, v := range ops[3:] {
		iters = append(iters, w.get(v))
	}
	body, err := singleBlock(f, f.Region(o, 0))
	if err != nil {
		return err
	}
	if !body.IsNil() {
		args := f.BlockArgs(body)
		for iv := lb; iv < ub; iv += step {
			if len(args) > 0 {
				w.set(args[0], iv)
			}
			for i, a := range args[1:] {
				if i < len(iters) {
					w.set(a, iters[i])
				}
			}
			vals, err := w.block(body)
			if err != nil {
				return err
			}
			if len(vals) == len(iters) {
				iters = vals
			}
		}
	}
	return w.bind(o, iters)
}

func (w *worker) bind(o ir.Op, vals []int64) error {
	f := w.m.f
	results := f.Results(o)
	if len(results) > len(vals) {
		return errors.InvalidStructure(errors.PhaseSimulate, f.OpName(o),
			"region yields fewer values than the op has results")
	}
	for i, r := range results {
		w.set(r, vals[i])
	}
	return nil
}
