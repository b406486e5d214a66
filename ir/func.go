package ir

import (
	"fmt"
	"slices"
)

type opNode struct {
	symbol   string
	operands []Value
	results  []Value
	regions  []Region
	effects  EffectInfo
	attr     int64
	parent   Block
	kind     Kind
}

type blockNode struct {
	ops    []Op
	args   []Value
	parent Region
}

type regionNode struct {
	blocks []Block
	owner  Op
}

type valueNode struct {
	uses  []Use
	def   Op    // defining op, for results
	block Block // owning block, for block arguments
	index int
}

// Func is a function-level IR fragment. It owns every op, block, region and
// value reachable from its body.
type Func struct {
	listener Listener
	Name     string
	ops      arena[opNode]
	blocks   arena[blockNode]
	regions  arena[regionNode]
	values   arena[valueNode]
	body     Region
}

// NewFunc creates a function whose body region holds one entry block with
// numParams arguments. The entry block starts empty; callers append ops and
// a func.return.
func NewFunc(name string, numParams int) *Func {
	f := &Func{Name: name}
	f.body = f.newRegion(Op{})
	f.AddBlock(f.body, numParams)
	return f
}

// Body returns the function body region.
func (f *Func) Body() Region { return f.body }

// Entry returns the first block of the body.
func (f *Func) Entry() Block { return f.Front(f.body) }

// Params returns the entry block arguments.
func (f *Func) Params() []Value { return f.BlockArgs(f.Entry()) }

// NumOpsTotal returns the number of live ops in the function.
func (f *Func) NumOpsTotal() int { return f.ops.count }

// OpCapacity returns an upper bound on Op.Index for this function.
func (f *Func) OpCapacity() int { return f.ops.capacity() }

func (f *Func) op(o Op) *opNode {
	n, ok := f.ops.lookup(o.idx, o.gen)
	if !ok {
		panic(fmt.Sprintf("ir: stale or nil handle %v", o))
	}
	return n
}

func (f *Func) block(b Block) *blockNode {
	n, ok := f.blocks.lookup(b.idx, b.gen)
	if !ok {
		panic(fmt.Sprintf("ir: stale or nil handle %v", b))
	}
	return n
}

func (f *Func) region(r Region) *regionNode {
	n, ok := f.regions.lookup(r.idx, r.gen)
	if !ok {
		panic(fmt.Sprintf("ir: stale or nil handle %v", r))
	}
	return n
}

func (f *Func) value(v Value) *valueNode {
	n, ok := f.values.lookup(v.idx, v.gen)
	if !ok {
		panic(fmt.Sprintf("ir: stale or nil handle %v", v))
	}
	return n
}

// Live reports whether the handle still names an op of this function.
func (f *Func) Live(o Op) bool {
	_, ok := f.ops.lookup(o.idx, o.gen)
	return ok
}

// BlockLive reports whether the handle still names a block.
func (f *Func) BlockLive(b Block) bool {
	_, ok := f.blocks.lookup(b.idx, b.gen)
	return ok
}

// ValueLive reports whether the handle still names a value.
func (f *Func) ValueLive(v Value) bool {
	_, ok := f.values.lookup(v.idx, v.gen)
	return ok
}

// Op queries

func (f *Func) Kind(o Op) Kind            { return f.op(o).kind }
func (f *Func) Symbol(o Op) string        { return f.op(o).symbol }
func (f *Func) Attr(o Op) int64           { return f.op(o).attr }
func (f *Func) Operands(o Op) []Value     { return slices.Clone(f.op(o).operands) }
func (f *Func) Operand(o Op, i int) Value { return f.op(o).operands[i] }
func (f *Func) NumOperands(o Op) int      { return len(f.op(o).operands) }
func (f *Func) Results(o Op) []Value      { return slices.Clone(f.op(o).results) }
func (f *Func) Result(o Op, i int) Value  { return f.op(o).results[i] }
func (f *Func) NumResults(o Op) int       { return len(f.op(o).results) }
func (f *Func) Regions(o Op) []Region     { return slices.Clone(f.op(o).regions) }
func (f *Func) Region(o Op, i int) Region { return f.op(o).regions[i] }
func (f *Func) ParentBlock(o Op) Block    { return f.op(o).parent }
func (f *Func) Effects(o Op) EffectInfo   { return f.op(o).effects.clone() }

// OpName returns the mnemonic of an op: the symbol for generic ops, the kind
// name otherwise.
func (f *Func) OpName(o Op) string {
	n := f.op(o)
	if n.kind == KindGeneric {
		return n.symbol
	}
	return n.kind.String()
}

// ParentOp returns the op owning the region that contains o, or the nil
// handle for ops directly in the function body or detached ops.
func (f *Func) ParentOp(o Op) Op {
	b := f.op(o).parent
	if b.IsNil() {
		return Op{}
	}
	return f.region(f.block(b).parent).owner
}

// PrevOp returns the op before o in its block, or the nil handle.
func (f *Func) PrevOp(o Op) Op {
	ops, i := f.position(o)
	if i <= 0 {
		return Op{}
	}
	return ops[i-1]
}

// NextOp returns the op after o in its block, or the nil handle.
func (f *Func) NextOp(o Op) Op {
	ops, i := f.position(o)
	if i < 0 || i+1 >= len(ops) {
		return Op{}
	}
	return ops[i+1]
}

func (f *Func) position(o Op) ([]Op, int) {
	b := f.op(o).parent
	if b.IsNil() {
		return nil, -1
	}
	ops := f.block(b).ops
	return ops, slices.Index(ops, o)
}

// Region queries

func (f *Func) Blocks(r Region) []Block { return slices.Clone(f.region(r).blocks) }
func (f *Func) NumBlocks(r Region) int  { return len(f.region(r).blocks) }
func (f *Func) RegionOwner(r Region) Op { return f.region(r).owner }

// Front returns the first block of r, or the nil handle for an empty region.
func (f *Func) Front(r Region) Block {
	bs := f.region(r).blocks
	if len(bs) == 0 {
		return Block{}
	}
	return bs[0]
}

// Block queries

func (f *Func) BlockOps(b Block) []Op      { return slices.Clone(f.block(b).ops) }
func (f *Func) NumOps(b Block) int         { return len(f.block(b).ops) }
func (f *Func) BlockArgs(b Block) []Value  { return slices.Clone(f.block(b).args) }
func (f *Func) BlockRegion(b Block) Region { return f.block(b).parent }

// FirstOp returns the first op of b, or the nil handle.
func (f *Func) FirstOp(b Block) Op {
	ops := f.block(b).ops
	if len(ops) == 0 {
		return Op{}
	}
	return ops[0]
}

// LastOp returns the last op of b, or the nil handle.
func (f *Func) LastOp(b Block) Op {
	ops := f.block(b).ops
	if len(ops) == 0 {
		return Op{}
	}
	return ops[len(ops)-1]
}

// Terminator returns the last op of b if it is a terminator.
func (f *Func) Terminator(b Block) Op {
	last := f.LastOp(b)
	if last.IsNil() || !f.op(last).kind.IsTerminator() {
		return Op{}
	}
	return last
}

// Value queries

func (f *Func) Uses(v Value) []Use     { return slices.Clone(f.value(v).uses) }
func (f *Func) HasUses(v Value) bool   { return len(f.value(v).uses) > 0 }
func (f *Func) DefiningOp(v Value) Op  { return f.value(v).def }
func (f *Func) IsBlockArg(v Value) bool { return !f.value(v).block.IsNil() }

// Users returns the distinct ops using v, in use order.
func (f *Func) Users(v Value) []Op {
	var users []Op
	for _, u := range f.value(v).uses {
		if !slices.Contains(users, u.User) {
			users = append(users, u.User)
		}
	}
	return users
}

// ArgOwner returns the block owning a block argument, or the nil handle for
// op results.
func (f *Func) ArgOwner(v Value) Block { return f.value(v).block }

// ValueBlock returns the block in which v becomes available: the owning
// block of an argument, or the parent block of the defining op.
func (f *Func) ValueBlock(v Value) Block {
	n := f.value(v)
	if !n.block.IsNil() {
		return n.block
	}
	return f.op(n.def).parent
}

// Ancestry

// IsAncestor reports whether a is b or transitively contains b.
func (f *Func) IsAncestor(a, b Op) bool {
	for cur := b; !cur.IsNil(); cur = f.ParentOp(cur) {
		if cur == a {
			return true
		}
	}
	return false
}

// IsProperAncestor reports whether a strictly contains b.
func (f *Func) IsProperAncestor(a, b Op) bool {
	return a != b && f.IsAncestor(a, b)
}
