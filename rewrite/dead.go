package rewrite

import "github.com/wippyai/ompopt/ir"

// IsTriviallyDead reports whether o can be erased without changing the
// program: it is not a terminator, none of its results is used, and it has
// no effect other than reads and allocation of its own results.
func IsTriviallyDead(f *ir.Func, o ir.Op) bool {
	if f.Kind(o).IsTerminator() {
		return false
	}
	for _, r := range f.Results(o) {
		if f.HasUses(r) {
			return false
		}
	}
	return isRemovable(f, o)
}

// isRemovable checks the effects of o, and of its nested ops when o has
// recursive effects.
func isRemovable(f *ir.Func, o ir.Op) bool {
	info := f.Effects(o)
	if !info.Declared {
		return false
	}
	results := f.Results(o)
	for _, e := range info.Effects {
		switch e.Kind {
		case ir.EffectRead:
		case ir.EffectAllocate:
			if !ownResult(results, e.On) {
				return false
			}
		default:
			return false
		}
	}
	if !info.Recursive {
		return true
	}
	for _, r := range f.Regions(o) {
		for _, b := range f.Blocks(r) {
			for _, inner := range f.BlockOps(b) {
				if f.Kind(inner).IsTerminator() {
					continue
				}
				if !isRemovable(f, inner) {
					return false
				}
			}
		}
	}
	return true
}

func ownResult(results []ir.Value, v ir.Value) bool {
	for _, r := range results {
		if r == v {
			return true
		}
	}
	return false
}
