package ir

import (
	"fmt"
	"slices"
)

// OpSpec describes an op to create. Effects nil means the default effects
// of Kind; generic ops without explicit effects declare nothing.
type OpSpec struct {
	Effects  *EffectInfo
	Symbol   string
	Operands []Value
	Attr     int64
	Results  int
	Regions  int
	Kind     Kind
}

// Create allocates a detached op. Regions are created empty; use AddBlock to
// populate them.
func (f *Func) Create(spec OpSpec) Op {
	if spec.Kind == KindInvalid || spec.Kind >= numKinds {
		panic(fmt.Sprintf("ir: create op of invalid kind %d", spec.Kind))
	}
	n := &opNode{
		kind:     spec.Kind,
		symbol:   spec.Symbol,
		attr:     spec.Attr,
		operands: slices.Clone(spec.Operands),
	}
	idx, gen := f.ops.alloc(n)
	o := Op{idx, gen}

	for i, v := range n.operands {
		vn := f.value(v)
		vn.uses = append(vn.uses, Use{User: o, Index: i})
	}
	for i := 0; i < spec.Results; i++ {
		n.results = append(n.results, f.newValue(&valueNode{def: o, index: i}))
	}
	for i := 0; i < spec.Regions; i++ {
		n.regions = append(n.regions, f.newRegion(o))
	}
	if spec.Effects != nil {
		n.effects = spec.Effects.clone()
	} else {
		n.effects = defaultEffects(spec.Kind, n.operands, n.results)
	}
	return o
}

func (f *Func) newValue(n *valueNode) Value {
	idx, gen := f.values.alloc(n)
	return Value{idx, gen}
}

func (f *Func) newRegion(owner Op) Region {
	idx, gen := f.regions.alloc(&regionNode{owner: owner})
	return Region{idx, gen}
}

// AddBlock appends a new block with numArgs arguments to r.
func (f *Func) AddBlock(r Region, numArgs int) Block {
	n := &blockNode{parent: r}
	idx, gen := f.blocks.alloc(n)
	b := Block{idx, gen}
	for i := 0; i < numArgs; i++ {
		n.args = append(n.args, f.newValue(&valueNode{block: b, index: i}))
	}
	rn := f.region(r)
	rn.blocks = append(rn.blocks, b)
	return b
}

// insertBlockAfter places a fresh empty block right after anchor.
func (f *Func) insertBlockAfter(anchor Block) Block {
	r := f.block(anchor).parent
	idx, gen := f.blocks.alloc(&blockNode{parent: r})
	b := Block{idx, gen}
	rn := f.region(r)
	pos := slices.Index(rn.blocks, anchor)
	rn.blocks = slices.Insert(rn.blocks, pos+1, b)
	return b
}

// Insertion

// InsertBefore inserts the detached op o right before anchor.
func (f *Func) InsertBefore(o, anchor Op) {
	b := f.op(anchor).parent
	if b.IsNil() {
		panic(fmt.Sprintf("ir: insert before detached op %v", anchor))
	}
	f.insertAt(o, b, slices.Index(f.block(b).ops, anchor))
}

// InsertAfter inserts the detached op o right after anchor.
func (f *Func) InsertAfter(o, anchor Op) {
	b := f.op(anchor).parent
	if b.IsNil() {
		panic(fmt.Sprintf("ir: insert after detached op %v", anchor))
	}
	f.insertAt(o, b, slices.Index(f.block(b).ops, anchor)+1)
}

// InsertAtStart inserts the detached op o at the front of b.
func (f *Func) InsertAtStart(o Op, b Block) {
	f.insertAt(o, b, 0)
}

// InsertAtEnd appends the detached op o to b.
func (f *Func) InsertAtEnd(o Op, b Block) {
	f.insertAt(o, b, len(f.block(b).ops))
}

func (f *Func) insertAt(o Op, b Block, pos int) {
	n := f.op(o)
	if !n.parent.IsNil() {
		panic(fmt.Sprintf("ir: %v is already attached", o))
	}
	if owner := f.region(f.block(b).parent).owner; !owner.IsNil() && f.IsAncestor(o, owner) {
		panic(fmt.Sprintf("ir: inserting %v into its own subtree", o))
	}
	bn := f.block(b)
	bn.ops = slices.Insert(bn.ops, pos, o)
	n.parent = b
	f.notifyInserted(o)
}

// unlink detaches o from its block without touching uses.
func (f *Func) unlink(o Op) {
	n := f.op(o)
	if n.parent.IsNil() {
		return
	}
	bn := f.block(n.parent)
	if i := slices.Index(bn.ops, o); i >= 0 {
		bn.ops = slices.Delete(bn.ops, i, i+1)
	}
	n.parent = Block{}
}

// MoveBefore moves o, with everything nested in it, right before anchor.
func (f *Func) MoveBefore(o, anchor Op) {
	if f.IsAncestor(o, anchor) {
		panic(fmt.Sprintf("ir: moving %v before %v inside its own subtree", o, anchor))
	}
	f.unlink(o)
	f.InsertBefore(o, anchor)
}

// MoveToEnd moves o to the end of b.
func (f *Func) MoveToEnd(o Op, b Block) {
	f.unlink(o)
	f.InsertAtEnd(o, b)
}

// Use-def edits

// SetOperand redirects operand i of o to v.
func (f *Func) SetOperand(o Op, i int, v Value) {
	n := f.op(o)
	f.dropUse(n.operands[i], Use{User: o, Index: i})
	n.operands[i] = v
	vn := f.value(v)
	vn.uses = append(vn.uses, Use{User: o, Index: i})
	f.notifyModified(o)
}

func (f *Func) dropUse(v Value, u Use) {
	vn := f.value(v)
	if i := slices.Index(vn.uses, u); i >= 0 {
		vn.uses = slices.Delete(vn.uses, i, i+1)
	}
}

// ReplaceAllUsesWith redirects every use of from to to.
func (f *Func) ReplaceAllUsesWith(from, to Value) {
	if from == to {
		return
	}
	uses := f.value(from).uses
	f.value(from).uses = nil
	tn := f.value(to)
	for _, u := range uses {
		f.op(u.User).operands[u.Index] = to
		tn.uses = append(tn.uses, u)
	}
	for _, u := range uses {
		f.notifyModified(u.User)
	}
}

// ReplaceOp redirects every result of o to the matching value of with and
// erases o.
func (f *Func) ReplaceOp(o Op, with []Value) {
	results := f.op(o).results
	if len(results) != len(with) {
		panic(fmt.Sprintf("ir: replacing %v: %d results, %d replacements", o, len(results), len(with)))
	}
	for i, r := range results {
		f.ReplaceAllUsesWith(r, with[i])
	}
	f.Erase(o)
}

// Erasure

// Erase removes o and everything nested in it. Every result of o, and of
// the nested ops, must be unused outside the erased subtree.
func (f *Func) Erase(o Op) {
	for _, r := range f.op(o).results {
		if len(f.value(r).uses) > 0 {
			panic(fmt.Sprintf("ir: erasing %v (%s) whose result still has uses", o, f.OpName(o)))
		}
	}
	f.unlink(o)
	f.destroy(o)
}

// EraseBlock removes b, which must be detached from use outside itself.
func (f *Func) EraseBlock(b Block) {
	bn := f.block(b)
	for _, o := range bn.ops {
		f.dropReferences(o)
	}
	for i := len(bn.ops) - 1; i >= 0; i-- {
		f.release(bn.ops[i])
	}
	bn.ops = nil
	f.releaseArgs(b)
	rn := f.region(bn.parent)
	if i := slices.Index(rn.blocks, b); i >= 0 {
		rn.blocks = slices.Delete(rn.blocks, i, i+1)
	}
	f.blocks.release(b.idx)
}

func (f *Func) destroy(o Op) {
	f.dropReferences(o)
	f.release(o)
}

// dropReferences removes every use made by o and the ops nested in it.
func (f *Func) dropReferences(o Op) {
	n := f.op(o)
	for i, v := range n.operands {
		f.dropUse(v, Use{User: o, Index: i})
	}
	for _, r := range n.regions {
		for _, b := range f.region(r).blocks {
			for _, inner := range f.block(b).ops {
				f.dropReferences(inner)
			}
		}
	}
}

// release frees o and its subtree, innermost first. References must already
// be dropped.
func (f *Func) release(o Op) {
	n := f.op(o)
	for _, r := range n.regions {
		rn := f.region(r)
		for _, b := range rn.blocks {
			bn := f.block(b)
			for i := len(bn.ops) - 1; i >= 0; i-- {
				f.release(bn.ops[i])
			}
			f.releaseArgs(b)
			f.blocks.release(b.idx)
		}
		f.regions.release(r.idx)
	}
	f.notifyErased(o)
	for _, v := range n.results {
		if len(f.value(v).uses) > 0 {
			panic(fmt.Sprintf("ir: erasing %v (%s) whose result is used outside it", o, f.OpName(o)))
		}
		f.values.release(v.idx)
	}
	f.ops.release(o.idx)
}

func (f *Func) releaseArgs(b Block) {
	for _, v := range f.block(b).args {
		if len(f.value(v).uses) > 0 {
			panic(fmt.Sprintf("ir: erasing %v whose argument is still used", b))
		}
		f.values.release(v.idx)
	}
}

// Block surgery

// SplitBlock moves before and every op after it into a new block inserted
// right after b in the same region, and returns the new block. A nil before
// splits at the end, yielding an empty block.
func (f *Func) SplitBlock(b Block, before Op) Block {
	nb := f.insertBlockAfter(b)
	bn := f.block(b)
	pos := len(bn.ops)
	if !before.IsNil() {
		pos = slices.Index(bn.ops, before)
		if pos < 0 {
			panic(fmt.Sprintf("ir: split point %v is not in %v", before, b))
		}
	}
	moved := slices.Clone(bn.ops[pos:])
	bn.ops = bn.ops[:pos]
	nbn := f.block(nb)
	nbn.ops = moved
	for _, o := range moved {
		f.op(o).parent = nb
	}
	return nb
}

// MergeBlocks appends every op of src to dst and erases src. args replace
// the block arguments of src; nil is allowed when src has none in use.
func (f *Func) MergeBlocks(src, dst Block, args []Value) {
	f.inlineBlock(src, dst, len(f.block(dst).ops), args)
}

// MergeBlockBefore moves every op of src right before anchor and erases src.
func (f *Func) MergeBlockBefore(src Block, anchor Op, args []Value) {
	dst := f.op(anchor).parent
	if dst.IsNil() {
		panic(fmt.Sprintf("ir: merge before detached op %v", anchor))
	}
	f.inlineBlock(src, dst, slices.Index(f.block(dst).ops, anchor), args)
}

func (f *Func) inlineBlock(src, dst Block, pos int, args []Value) {
	if src == dst {
		panic(fmt.Sprintf("ir: merging %v into itself", src))
	}
	sn := f.block(src)
	if args != nil {
		if len(args) != len(sn.args) {
			panic(fmt.Sprintf("ir: merging %v: %d arguments, %d replacements", src, len(sn.args), len(args)))
		}
		for i, a := range sn.args {
			f.ReplaceAllUsesWith(a, args[i])
		}
	}
	moved := sn.ops
	sn.ops = nil
	dn := f.block(dst)
	dn.ops = slices.Insert(dn.ops, pos, moved...)
	for _, o := range moved {
		f.op(o).parent = dst
	}
	f.EraseBlock(src)
	for _, o := range moved {
		f.notifyInserted(o)
	}
}
