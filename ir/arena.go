package ir

// slot holds one arena entry. gen starts at 1 so the zero handle never
// resolves.
type slot[T any] struct {
	val  *T
	gen  uint32
	live bool
}

// arena is a slot allocator with a free list. Index 0 is reserved for the
// nil handle.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

func (a *arena[T]) alloc(v *T) (idx, gen uint32) {
	a.count++
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.val = v
		s.live = true
		return idx, s.gen
	}
	if len(a.slots) == 0 {
		a.slots = append(a.slots, slot[T]{})
	}
	a.slots = append(a.slots, slot[T]{val: v, gen: 1, live: true})
	return uint32(len(a.slots) - 1), 1
}

func (a *arena[T]) release(idx uint32) {
	s := &a.slots[idx]
	s.val = nil
	s.live = false
	s.gen++
	a.free = append(a.free, idx)
	a.count--
}

func (a *arena[T]) lookup(idx, gen uint32) (*T, bool) {
	if idx == 0 || int(idx) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx]
	if !s.live || s.gen != gen {
		return nil, false
	}
	return s.val, true
}

// capacity returns the number of slots ever allocated, including index 0.
func (a *arena[T]) capacity() int {
	return len(a.slots)
}
