package analysis

import "github.com/wippyai/ompopt/ir"

// IsReadOnly reports whether o performs at most reads. An op with
// recursive effects is read-only only if every op nested in its regions
// is. An op that declares no effects at all may do anything and is not
// read-only.
func IsReadOnly(f *ir.Func, o ir.Op) bool {
	info := f.Effects(o)
	if info.Recursive {
		for _, r := range f.Regions(o) {
			for _, b := range f.Blocks(r) {
				for _, nested := range f.BlockOps(b) {
					if !IsReadOnly(f, nested) {
						return false
					}
				}
			}
		}
	}
	if !info.Declared {
		return false
	}
	for _, e := range info.Effects {
		if e.Kind != ir.EffectRead {
			return false
		}
	}
	return true
}
