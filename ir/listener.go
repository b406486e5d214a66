package ir

// Listener observes structural edits of a Func.
//
// OpErased is called for an op and every op nested in it, innermost first,
// while the op is still live, so the listener may inspect its operands.
type Listener interface {
	OpInserted(o Op)
	OpModified(o Op)
	OpErased(o Op)
}

// SetListener installs l and returns the previously installed listener.
func (f *Func) SetListener(l Listener) Listener {
	prev := f.listener
	f.listener = l
	return prev
}

func (f *Func) notifyInserted(o Op) {
	if f.listener != nil {
		f.listener.OpInserted(o)
	}
}

func (f *Func) notifyModified(o Op) {
	if f.listener != nil {
		f.listener.OpModified(o)
	}
}

func (f *Func) notifyErased(o Op) {
	if f.listener != nil {
		f.listener.OpErased(o)
	}
}
