package analysis

import "github.com/wippyai/ompopt/ir"

// UsesWithin reports whether every use of every result of o is made by an
// op strictly inside root. An op without uses trivially satisfies this.
func UsesWithin(f *ir.Func, o, root ir.Op) bool {
	for _, r := range f.Results(o) {
		for _, u := range f.Uses(r) {
			if !f.IsProperAncestor(root, u.User) {
				return false
			}
		}
	}
	return true
}
