package ir

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/wippyai/ompopt/errors"
)

// Verify checks the structural invariants of f and returns every violation
// found, combined with multierr. A nil result means the tree is well formed:
// single-owner containment with consistent back-references, exactly one
// terminator per block in last position, per-kind arity, consistent use
// lists, and every use dominated by its definition.
func Verify(f *Func) error {
	v := &verifier{f: f}
	if !f.region(f.body).owner.IsNil() {
		v.fail(nil, "", "function body region has an owner")
	}
	v.region(f.body, []string{f.Name}, KindInvalid)
	v.values()
	return v.err
}

type verifier struct {
	f   *Func
	err error
}

func (v *verifier) fail(path []string, op, format string, args ...any) {
	v.err = multierr.Append(v.err, errors.Invariant(slices.Clone(path), op, fmt.Sprintf(format, args...)))
}

func (v *verifier) region(r Region, path []string, owner Kind) {
	f := v.f
	for bi, b := range f.region(r).blocks {
		bn, ok := f.blocks.lookup(b.idx, b.gen)
		if !ok {
			v.fail(path, "", "region lists dead block %v", b)
			continue
		}
		if bn.parent != r {
			v.fail(path, "", "block %d does not point back to its region", bi)
		}
		v.block(b, append(path, fmt.Sprintf("^bb%d", bi)), owner)
	}
}

func (v *verifier) block(b Block, path []string, owner Kind) {
	f := v.f
	bn := f.block(b)
	for ai, a := range bn.args {
		an, ok := f.values.lookup(a.idx, a.gen)
		if !ok || an.block != b || an.index != ai {
			v.fail(path, "", "block argument %d is not owned by its block", ai)
		}
	}
	if len(bn.ops) == 0 {
		v.fail(path, "", "block has no terminator")
		return
	}
	for i, o := range bn.ops {
		n, ok := f.ops.lookup(o.idx, o.gen)
		if !ok {
			v.fail(path, "", "block lists dead op %v", o)
			continue
		}
		name := f.OpName(o)
		if n.parent != b {
			v.fail(path, name, "op does not point back to its block")
		}
		last := i == len(bn.ops)-1
		switch {
		case last && !n.kind.IsTerminator():
			v.fail(path, name, "block does not end with a terminator")
		case !last && n.kind.IsTerminator():
			v.fail(path, name, "terminator is not the last op of its block")
		case last:
			if want, ok := owner.DefaultTerminator(); ok && n.kind != want {
				v.fail(path, name, "expected terminator %s", want)
			}
		}
		v.op(o, append(path, name))
	}
}

func (v *verifier) op(o Op, path []string) {
	f := v.f
	n := f.op(o)
	name := f.OpName(o)

	for i, r := range n.regions {
		rn, ok := f.regions.lookup(r.idx, r.gen)
		if !ok {
			v.fail(path, name, "region %d is dead", i)
			continue
		}
		if rn.owner != o {
			v.fail(path, name, "region %d does not point back to its op", i)
		}
	}
	for i, r := range n.results {
		rn, ok := f.values.lookup(r.idx, r.gen)
		if !ok || rn.def != o || rn.index != i {
			v.fail(path, name, "result %d is not owned by its op", i)
		}
	}
	for i, operand := range n.operands {
		vn, ok := f.values.lookup(operand.idx, operand.gen)
		if !ok {
			v.fail(path, name, "operand %d refers to a dead value", i)
			continue
		}
		if !slices.Contains(vn.uses, Use{User: o, Index: i}) {
			v.fail(path, name, "operand %d is missing from the use list of its value", i)
		}
		if !v.dominates(operand, o) {
			v.fail(path, name, "operand %d is used outside the scope of its definition", i)
		}
	}

	v.arity(o, path)
	for i, r := range n.regions {
		if _, ok := f.regions.lookup(r.idx, r.gen); ok {
			v.region(r, append(path, fmt.Sprintf("region%d", i)), n.kind)
		}
	}
}

// dominates reports whether val is visible at user: defined earlier in the
// same block as user or as one of user's ancestors, or an argument of such
// a block.
func (v *verifier) dominates(val Value, user Op) bool {
	f := v.f
	vn := f.value(val)
	if !vn.block.IsNil() {
		for cur := user; !cur.IsNil(); cur = f.ParentOp(cur) {
			if f.op(cur).parent == vn.block {
				return true
			}
		}
		return false
	}
	def := vn.def
	if !f.Live(def) {
		return false
	}
	defBlock := f.op(def).parent
	if defBlock.IsNil() {
		return false
	}
	ops := f.block(defBlock).ops
	defPos := slices.Index(ops, def)
	for cur := user; !cur.IsNil(); cur = f.ParentOp(cur) {
		if f.op(cur).parent == defBlock {
			return slices.Index(ops, cur) > defPos
		}
	}
	return false
}

func (v *verifier) arity(o Op, path []string) {
	f := v.f
	n := f.op(o)
	name := f.OpName(o)
	if want := n.kind.NumRegions(); want >= 0 && len(n.regions) != want {
		v.fail(path, name, "expected %d regions, got %d", want, len(n.regions))
		return
	}
	if want := n.kind.NumResults(); want >= 0 && len(n.results) != want {
		v.fail(path, name, "expected %d results, got %d", want, len(n.results))
	}

	switch n.kind {
	case KindParallel:
		if len(n.operands) != 0 {
			v.fail(path, name, "parallel region takes no operands")
		}
		if f.NumBlocks(n.regions[0]) == 0 {
			v.fail(path, name, "parallel region has no body")
		}
	case KindBarrier, KindTerminator, KindThreadNum, KindConstant:
		if len(n.operands) != 0 {
			v.fail(path, name, "expected no operands, got %d", len(n.operands))
		}
	case KindAdd, KindSub, KindMul, KindCmpLT:
		if len(n.operands) != 2 {
			v.fail(path, name, "expected 2 operands, got %d", len(n.operands))
		}
	case KindLoad, KindDealloc:
		if len(n.operands) < 1 {
			v.fail(path, name, "missing memref operand")
		}
	case KindStore:
		if len(n.operands) < 2 {
			v.fail(path, name, "expected value and memref operands")
		}
	case KindFor:
		if len(n.operands) < 3 {
			v.fail(path, name, "expected lower bound, upper bound and step")
			return
		}
		iters := len(n.operands) - 3
		if len(n.results) != iters {
			v.fail(path, name, "expected %d results for %d iteration arguments", iters, iters)
		}
		v.singleBlockBody(o, 0, iters+1, iters, path)
	case KindIf:
		if len(n.operands) != 1 {
			v.fail(path, name, "expected a condition operand")
		}
		v.singleBlockBody(o, 0, 0, len(n.results), path)
		switch f.NumBlocks(n.regions[1]) {
		case 0:
			if len(n.results) > 0 {
				v.fail(path, name, "result-bearing conditional needs an else region")
			}
		default:
			v.singleBlockBody(o, 1, 0, len(n.results), path)
		}
	case KindExecute:
		if f.NumBlocks(n.regions[0]) == 0 {
			v.fail(path, name, "region has no body")
		}
	}
}

// singleBlockBody checks region i of o holds exactly one block with args
// arguments whose yield carries yields operands.
func (v *verifier) singleBlockBody(o Op, i, args, yields int, path []string) {
	f := v.f
	name := f.OpName(o)
	r := f.op(o).regions[i]
	if f.NumBlocks(r) != 1 {
		v.fail(path, name, "region %d must hold exactly one block", i)
		return
	}
	b := f.Front(r)
	if got := len(f.block(b).args); got != args {
		v.fail(path, name, "region %d block expects %d arguments, got %d", i, args, got)
	}
	if term := f.Terminator(b); !term.IsNil() && f.op(term).kind == KindYield {
		if got := len(f.op(term).operands); got != yields {
			v.fail(path, name, "region %d yields %d values, expected %d", i, got, yields)
		}
	}
}

// values checks the use lists of every live value against the operands of
// its users.
func (v *verifier) values() {
	f := v.f
	for idx := 1; idx < f.values.capacity(); idx++ {
		s := f.values.slots[idx]
		if !s.live {
			continue
		}
		for _, u := range s.val.uses {
			un, ok := f.ops.lookup(u.User.idx, u.User.gen)
			if !ok {
				v.fail([]string{f.Name}, "", "value %d is used by dead op %v", idx, u.User)
				continue
			}
			if u.Index >= len(un.operands) || un.operands[u.Index] != (Value{uint32(idx), s.gen}) {
				v.fail([]string{f.Name}, f.OpName(u.User), "use list of value %d does not match operand %d", idx, u.Index)
			}
		}
	}
}
