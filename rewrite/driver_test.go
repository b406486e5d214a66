package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext"
)

// rename replaces generic op `from` by a fresh generic op `to`.
type rename struct{ from, to string }

func (p rename) Name() string  { return p.from + "->" + p.to }
func (p rename) Root() ir.Kind { return ir.KindGeneric }

func (p rename) MatchAndRewrite(o ir.Op, rw *Rewriter) bool {
	if rw.Symbol(o) != p.from {
		return false
	}
	n := rw.Create(ir.OpSpec{Kind: ir.KindGeneric, Symbol: p.to})
	rw.InsertBefore(n, o)
	rw.Erase(o)
	return true
}

// spy records every op it is offered and never matches.
type spy struct{ seen []string }

func (p *spy) Name() string  { return "spy" }
func (p *spy) Root() ir.Kind { return ir.KindInvalid }

func (p *spy) MatchAndRewrite(o ir.Op, rw *Rewriter) bool {
	p.seen = append(p.seen, rw.OpName(o))
	return false
}

// claim reports success without editing anything.
type claim struct{}

func (claim) Name() string  { return "claim" }
func (claim) Root() ir.Kind { return ir.KindReturn }

func (claim) MatchAndRewrite(ir.Op, *Rewriter) bool { return true }

// killer erases the op following it and inserts a fresh op in its place.
type killer struct{ victim, fresh ir.Op }

func (p *killer) Name() string  { return "killer" }
func (p *killer) Root() ir.Kind { return ir.KindGeneric }

func (p *killer) MatchAndRewrite(o ir.Op, rw *Rewriter) bool {
	if rw.Symbol(o) != "test.kill" {
		return false
	}
	next := rw.NextOp(o)
	if next.IsNil() || rw.OpName(next) != "test.victim" {
		return false
	}
	p.victim = next
	rw.Erase(next)
	p.fresh = rw.Create(ir.OpSpec{Kind: ir.KindGeneric, Symbol: "test.fresh"})
	rw.InsertAfter(p.fresh, o)
	return true
}

func TestDriver_ErasesDeadOps(t *testing.T) {
	f := irtext.MustParseFunc(`(func (param %m)
		(arith.constant (result %a) 1)
		(arith.constant (result %b) 2)
		(arith.addi (result %c) %a %b)
		(memref.store %a %m %a))`)

	res := NewDriver(Config{EraseDeadOps: true}).Run(f)

	assert.Equal(t, 2, res.Erased)
	assert.Equal(t, 0, res.Rewrites)
	assert.Equal(t, 2, res.Iterations)
	assert.True(t, res.Converged)
	assert.Equal(t, `(func (param %arg0)
  (arith.constant (result %0) 1)
  (memref.store %0 %arg0 %0))
`, irtext.Format(f))
}

func TestDriver_DeadEraseDisabled(t *testing.T) {
	f := irtext.MustParseFunc(`(func (arith.constant (result %a) 1))`)

	res := NewDriver(Config{}).Run(f)

	assert.Equal(t, 0, res.Erased)
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, f.NumOpsTotal())
}

func TestDriver_ChainsRewritesWithinIteration(t *testing.T) {
	f := irtext.MustParseFunc(`(func (test.a))`)

	res := NewDriver(Config{}, rename{"test.a", "test.b"}, rename{"test.b", "test.c"}).Run(f)

	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Rewrites)
	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, map[string]int{"test.a->test.b": 1, "test.b->test.c": 1}, res.ByPattern)
	assert.Equal(t, "(func\n  (test.c))\n", irtext.Format(f))
}

func TestDriver_FirstMatchingPatternWins(t *testing.T) {
	f := irtext.MustParseFunc(`(func (test.a))`)

	res := NewDriver(Config{}, rename{"test.a", "test.b"}, rename{"test.a", "test.x"}).Run(f)

	assert.Equal(t, 1, res.Rewrites)
	assert.Equal(t, 0, res.ByPattern["test.a->test.x"])
	assert.Equal(t, "(func\n  (test.b))\n", irtext.Format(f))
}

func TestDriver_MaxIterations(t *testing.T) {
	t.Run("explicit cap", func(t *testing.T) {
		f := irtext.MustParseFunc(`(func)`)
		res := NewDriver(Config{MaxIterations: 3}, claim{}).Run(f)
		assert.False(t, res.Converged)
		assert.Equal(t, 3, res.Iterations)
		assert.Equal(t, 3, res.Rewrites)
	})

	t.Run("default cap", func(t *testing.T) {
		f := irtext.MustParseFunc(`(func)`)
		d := NewDriver(Config{}, claim{})
		assert.Equal(t, DefaultMaxIterations, d.Config().MaxIterations)
		res := d.Run(f)
		assert.False(t, res.Converged)
		assert.Equal(t, DefaultMaxIterations, res.Iterations)
	})
}

func TestDriver_MaxRewrites(t *testing.T) {
	f := irtext.MustParseFunc(`(func (test.a))`)
	// The two renames feed each other forever.
	d := NewDriver(Config{MaxRewrites: 5}, rename{"test.a", "test.b"}, rename{"test.b", "test.a"})

	res := d.Run(f)

	assert.False(t, res.Converged)
	assert.Equal(t, 5, res.Rewrites)
	assert.Equal(t, 1, res.Iterations)
	require.NoError(t, ir.Verify(f))
}

func TestDriver_RemoveOnErase(t *testing.T) {
	f := irtext.MustParseFunc(`(func (test.kill) (test.victim))`)
	k := &killer{}
	s := &spy{}

	res := NewDriver(Config{}, k, s).Run(f)

	require.Equal(t, 1, res.ByPattern["killer"])
	assert.Equal(t, k.victim.Index(), k.fresh.Index(), "erased slot should be reused")
	assert.NotContains(t, s.seen, "test.victim")
	assert.Contains(t, s.seen, "test.fresh")
	assert.False(t, f.Live(k.victim))
}

func TestDriver_Observer(t *testing.T) {
	f := irtext.MustParseFunc(`(func (test.a) (test.a))`)
	var events []Event
	var snapshots []string

	res := NewDriver(Config{}, rename{"test.a", "test.b"}).
		OnRewrite(func(f *ir.Func, ev Event) {
			events = append(events, ev)
			snapshots = append(snapshots, irtext.Format(f))
		}).
		Run(f)

	require.Len(t, events, res.Rewrites)
	assert.Equal(t, "test.a->test.b", events[0].Pattern)
	assert.Equal(t, ir.KindGeneric, events[0].Root)
	assert.Equal(t, 1, events[0].Iteration)
	assert.Equal(t, 2, events[1].Rewrites)
	assert.Equal(t, "(func\n  (test.b)\n  (test.a))\n", snapshots[0])
	assert.Equal(t, "(func\n  (test.b)\n  (test.b))\n", snapshots[1])
}

func TestDriver_RestoresListener(t *testing.T) {
	f := irtext.MustParseFunc(`(func)`)
	prev := &countingListener{}
	f.SetListener(prev)

	NewDriver(Config{}).Run(f)

	assert.Same(t, prev, f.SetListener(nil))
}

type countingListener struct{ n int }

func (l *countingListener) OpInserted(ir.Op) { l.n++ }
func (l *countingListener) OpModified(ir.Op) { l.n++ }
func (l *countingListener) OpErased(ir.Op)   { l.n++ }
