package analysis

import "github.com/wippyai/ompopt/ir"

// IsAncestor reports whether a contains b. Every op contains itself.
func IsAncestor(f *ir.Func, a, b ir.Op) bool {
	return f.IsAncestor(a, b)
}

// HasUnnestedParallel reports whether f holds an omp.parallel other than p
// that is not nested inside p. Enclosing parallel regions count.
func HasUnnestedParallel(f *ir.Func, p ir.Op) bool {
	return findParallel(f, f.Body(), p)
}

func findParallel(f *ir.Func, r ir.Region, skip ir.Op) bool {
	for _, b := range f.Blocks(r) {
		for _, o := range f.BlockOps(b) {
			if o == skip {
				continue
			}
			if f.Kind(o) == ir.KindParallel {
				return true
			}
			for _, nested := range f.Regions(o) {
				if findParallel(f, nested, skip) {
					return true
				}
			}
		}
	}
	return false
}
