package rewrite

import "math/bits"

// BitSet is a compact set of uint32 values using a bitmap.
// Sized for dense arena slot indices.
type BitSet struct {
	bits []uint64
}

// NewBitSet creates a BitSet that can hold values up to maxVal (inclusive)
// without growing.
func NewBitSet(maxVal int) *BitSet {
	words := (maxVal + 64) / 64
	return &BitSet{bits: make([]uint64, words)}
}

// Set adds val to the set.
func (b *BitSet) Set(val uint32) {
	word := val / 64
	if int(word) >= len(b.bits) {
		b.grow(int(word) + 1)
	}
	b.bits[word] |= 1 << (val % 64)
}

// Clear removes val from the set.
func (b *BitSet) Clear(val uint32) {
	word := val / 64
	if int(word) < len(b.bits) {
		b.bits[word] &^= 1 << (val % 64)
	}
}

// Has returns true if val is in the set.
func (b *BitSet) Has(val uint32) bool {
	word := val / 64
	if int(word) >= len(b.bits) {
		return false
	}
	return b.bits[word]&(1<<(val%64)) != 0
}

// Reset clears all elements from the set.
func (b *BitSet) Reset() {
	clear(b.bits)
}

// Count returns the number of elements in the set.
func (b *BitSet) Count() int {
	count := 0
	for _, word := range b.bits {
		count += bits.OnesCount64(word)
	}
	return count
}

// grow expands the bitset to n words.
// Callers guarantee n > len(b.bits).
func (b *BitSet) grow(n int) {
	newBits := make([]uint64, n)
	copy(newBits, b.bits)
	b.bits = newBits
}
