package ir

// Clone deep-copies o: results, regions, blocks, block arguments and nested
// ops. Operands defined inside o are remapped to their copies; operands
// defined outside keep referring to the original values. The clone is
// detached.
func (f *Func) Clone(o Op) Op {
	return f.cloneOp(o, make(map[Value]Value))
}

func (f *Func) cloneOp(o Op, mapping map[Value]Value) Op {
	n := f.op(o)
	operands := make([]Value, len(n.operands))
	for i, v := range n.operands {
		if nv, ok := mapping[v]; ok {
			operands[i] = nv
		} else {
			operands[i] = v
		}
	}
	effects := n.effects.clone()
	for i, e := range effects.Effects {
		if nv, ok := mapping[e.On]; ok {
			effects.Effects[i].On = nv
		}
	}

	c := f.Create(OpSpec{
		Kind:     n.kind,
		Symbol:   n.symbol,
		Attr:     n.attr,
		Operands: operands,
		Results:  len(n.results),
		Regions:  len(n.regions),
		Effects:  &effects,
	})
	cn := f.op(c)
	for i, r := range n.results {
		mapping[r] = cn.results[i]
	}
	// Effects on own results point at the original; rebind them now that
	// the clone's results exist.
	for i, e := range cn.effects.Effects {
		if nv, ok := mapping[e.On]; ok {
			cn.effects.Effects[i].On = nv
		}
	}

	for i, r := range n.regions {
		dst := cn.regions[i]
		for _, b := range f.region(r).blocks {
			bn := f.block(b)
			nb := f.AddBlock(dst, len(bn.args))
			for j, a := range bn.args {
				mapping[a] = f.block(nb).args[j]
			}
			for _, inner := range bn.ops {
				ci := f.cloneOp(inner, mapping)
				nbn := f.block(nb)
				nbn.ops = append(nbn.ops, ci)
				f.op(ci).parent = nb
			}
		}
	}
	return c
}
