package ir

// Walk calls fn for every op of the function in post-order: nested ops
// before the op owning them, ops of a block in order. The op list is
// collected before the first call, and ops erased by fn are skipped.
func (f *Func) Walk(fn func(Op)) {
	for _, o := range f.PostOrder() {
		if f.Live(o) {
			fn(o)
		}
	}
}

// PostOrder returns every op of the function in post-order.
func (f *Func) PostOrder() []Op {
	var out []Op
	f.collectRegion(f.body, &out)
	return out
}

// WalkOp calls fn for o and every op nested in it, in post-order.
func (f *Func) WalkOp(o Op, fn func(Op)) {
	var out []Op
	f.collectOp(o, &out)
	for _, n := range out {
		if f.Live(n) {
			fn(n)
		}
	}
}

func (f *Func) collectRegion(r Region, out *[]Op) {
	for _, b := range f.region(r).blocks {
		for _, o := range f.block(b).ops {
			f.collectOp(o, out)
		}
	}
}

func (f *Func) collectOp(o Op, out *[]Op) {
	for _, r := range f.op(o).regions {
		f.collectRegion(r, out)
	}
	*out = append(*out, o)
}

// CountKind returns the number of ops of kind k in the function.
func (f *Func) CountKind(k Kind) int {
	count := 0
	for _, o := range f.PostOrder() {
		if f.op(o).kind == k {
			count++
		}
	}
	return count
}
