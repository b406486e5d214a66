package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext"
)

func TestIsTriviallyDead(t *testing.T) {
	tests := []struct {
		name string
		op   string
		want bool
	}{
		{"unused constant", `(arith.constant (result %x) 1)`, true},
		{"used constant", `(arith.constant (result %x) 1) (memref.store %x %m %x)`, false},
		{"unused load", `(memref.load (result %x) %m %i)`, true},
		{"store", `(memref.store %i %m %i)`, false},
		{"unused alloc", `(memref.alloc (result %x))`, true},
		{"dealloc", `(memref.dealloc %m)`, false},
		{"unannotated call", `(func.call (result %x) "f")`, false},
		{"read-only call", `(func.call (result %x) "f" (effects read))`, true},
		{"barrier", `(omp.barrier)`, false},
		{"parallel", `(omp.parallel)`, false},
		{"generic without effects", `(test.op)`, false},
		{"generic with empty effects", `(test.op (effects))`, true},
		{"alloc on another value", `(test.op (effects alloc@%m))`, false},
		{"pure loop", `(scf.for %i %i %i (arith.addi (result %x) %i %i))`, true},
		{"loop with store", `(scf.for %i %i %i (memref.store %i %m %i))`, false},
		{"loop with barrier", `(scf.for %i %i %i (omp.barrier))`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := irtext.MustParseFunc(`(func (param %m %i) ` + tt.op + `)`)
			first := f.FirstOp(f.Entry())
			assert.Equal(t, tt.want, IsTriviallyDead(f, first))
		})
	}

	t.Run("terminator", func(t *testing.T) {
		f := irtext.MustParseFunc(`(func)`)
		assert.False(t, IsTriviallyDead(f, f.Terminator(f.Entry())))
	})
}

func TestWorklist(t *testing.T) {
	f := irtext.MustParseFunc(`(func (test.a) (test.b))`)
	ops := f.BlockOps(f.Entry())
	a, b := ops[0], ops[1]

	w := newWorklist(f)
	w.push(a)
	w.push(b)
	w.push(a)
	assert.Equal(t, 2, w.len(), "push should deduplicate")

	w.remove(b)
	got, ok := w.pop()
	assert.True(t, ok)
	assert.Equal(t, a, got, "removed op should be skipped")

	_, ok = w.pop()
	assert.False(t, ok)

	// An erased op whose slot is reused must not come back. The driver
	// removes erased ops through its listener.
	w.push(b)
	w.remove(b)
	f.Erase(b)
	fresh := f.Create(ir.OpSpec{Kind: ir.KindGeneric, Symbol: "test.c"})
	f.InsertAtEnd(fresh, f.Entry())
	w.push(fresh)
	got, ok = w.pop()
	assert.True(t, ok)
	assert.Equal(t, fresh, got)
	_, ok = w.pop()
	assert.False(t, ok)
}

func TestBitSet(t *testing.T) {
	b := NewBitSet(10)
	assert.False(t, b.Has(3))

	b.Set(3)
	b.Set(200)
	assert.True(t, b.Has(3))
	assert.True(t, b.Has(200), "set should grow")
	assert.Equal(t, 2, b.Count())

	b.Clear(3)
	assert.False(t, b.Has(3))
	b.Clear(10_000)

	b.Reset()
	assert.Equal(t, 0, b.Count())
}
