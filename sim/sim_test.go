package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/irtext"
	"github.com/wippyai/ompopt/ompopt"
)

func run(t *testing.T, src string, cfg Config, args ...int64) *Result {
	t.Helper()
	res, err := Run(irtext.MustParseFunc(src), cfg, args...)
	require.NoError(t, err)
	return res
}

func kinds(trace []Event) []EventKind {
	out := make([]EventKind, len(trace))
	for i, ev := range trace {
		out[i] = ev.Kind
	}
	return out
}

func TestRun_Sequential(t *testing.T) {
	res := run(t, `(func (param %a %b)
		(arith.addi (result %s) %a %b)
		(arith.muli (result %p) %s %b)
		(arith.subi (result %d) %p %a)
		(arith.cmpi_slt (result %lt) %a %b)
		(func.return %d %lt))`, Config{}, 2, 5)

	assert.Equal(t, []int64{33, 1}, res.Returns)
	assert.Equal(t, 0, res.Regions)
	assert.Empty(t, res.Trace)
}

func TestRun_Loop(t *testing.T) {
	res := run(t, `(func (param %m)
		(arith.constant (result %c0) 0)
		(arith.constant (result %c1) 1)
		(arith.constant (result %c4) 4)
		(scf.for (result %sum) %c0 %c4 %c1 %c0 (args %i %acc)
			(arith.addi (result %next) %acc %i)
			(memref.store %next %m %i)
			(scf.yield %next))
		(func.return %sum))`, Config{}, 1)

	assert.Equal(t, []int64{6}, res.Returns)
	assert.Equal(t, map[Cell]int64{
		{1, 0}: 0, {1, 1}: 1, {1, 2}: 3, {1, 3}: 6,
	}, res.Memory)
}

func TestRun_ParallelTeam(t *testing.T) {
	res := run(t, `(func (param %m)
		(omp.parallel
			(omp.thread_num (result %t))
			(arith.constant (result %k) 10)
			(arith.muli (result %v) %t %k)
			(memref.store %v %m %t)))`, Config{Workers: 3}, 7)

	assert.Equal(t, map[Cell]int64{{7, 0}: 0, {7, 1}: 10, {7, 2}: 20}, res.Memory)
	assert.Equal(t, 1, res.Regions)
	assert.Equal(t, 0, res.Barriers)
	assert.Equal(t, 1, res.Phases)
	assert.Equal(t, []EventKind{EventFork, EventJoin}, kinds(res.Trace))
}

func TestRun_BarrierOrdersPhases(t *testing.T) {
	// Worker 0 reads the cell the last worker writes before the barrier.
	res := run(t, `(func (param %m %n)
		(omp.parallel
			(omp.thread_num (result %t))
			(arith.constant (result %one) 1)
			(arith.addi (result %v) %t %one)
			(memref.store %v %m %t)
			(omp.barrier)
			(arith.constant (result %last) 3)
			(memref.load (result %x) %m %last)
			(memref.store %x %n %t)))`, Config{Workers: 4}, 1, 2)

	for i := int64(0); i < 4; i++ {
		assert.Equal(t, int64(4), res.Memory[Cell{2, i}], "worker %d", i)
	}
	assert.Equal(t, 1, res.Barriers)
	assert.Equal(t, 2, res.Phases)
	assert.Equal(t, []Event{
		{Kind: EventFork, Region: 1},
		{Kind: EventBarrier, Region: 1, Phase: 1},
		{Kind: EventJoin, Region: 1, Phase: 2},
	}, res.Trace)
}

func TestRun_NestedParallelInline(t *testing.T) {
	res := run(t, `(func (param %m)
		(omp.parallel
			(omp.thread_num (result %t))
			(omp.parallel
				(omp.thread_num (result %u))
				(memref.store %u %m %t)
				(omp.barrier))))`, Config{Workers: 2}, 1)

	assert.Equal(t, map[Cell]int64{{1, 0}: 0, {1, 1}: 0}, res.Memory)
	assert.Equal(t, 1, res.Regions)
	assert.Equal(t, 0, res.Barriers)
}

func TestRun_SequentialBarrierIsNoop(t *testing.T) {
	res := run(t, `(func (omp.barrier))`, Config{})
	assert.Equal(t, 0, res.Barriers)
}

func TestRun_Alloc(t *testing.T) {
	res := run(t, `(func
		(memref.alloc (result %a))
		(memref.alloc (result %b))
		(arith.constant (result %v) 9)
		(memref.store %v %b)
		(memref.dealloc %a)
		(func.return %a %b))`, Config{})

	assert.Equal(t, []int64{allocBase + 1, allocBase + 2}, res.Returns)
	assert.Equal(t, int64(9), res.Memory[Cell{allocBase + 2, 0}])
}

func TestRun_Cells(t *testing.T) {
	res := &Result{Memory: map[Cell]int64{{2, 0}: 1, {1, 5}: 1, {1, 2}: 1}}
	assert.Equal(t, []Cell{{1, 2}, {1, 5}, {2, 0}}, res.Cells())
	assert.Equal(t, "1[5]", Cell{1, 5}.String())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		cfg  Config
		args []int64
		kind errors.Kind
	}{
		{
			name: "argument count",
			src:  `(func (param %a))`,
			kind: errors.KindInvalidInput,
		},
		{
			name: "barrier divergence",
			src: `(func
				(omp.parallel
					(omp.thread_num (result %t))
					(arith.constant (result %one) 1)
					(arith.cmpi_slt (result %c) %t %one)
					(scf.if %c (then (omp.barrier)))))`,
			kind: errors.KindInvariant,
		},
		{
			name: "step limit",
			src: `(func
				(arith.constant (result %c0) 0)
				(arith.constant (result %c1) 1)
				(arith.constant (result %n) 100)
				(scf.for %c0 %n %c1 (args %i)
					(arith.addi (result %x) %i %i)))`,
			cfg:  Config{MaxSteps: 20},
			kind: errors.KindLimit,
		},
		{
			name: "non-positive step",
			src: `(func
				(arith.constant (result %c0) 0)
				(scf.for %c0 %c0 %c0 (args %i)))`,
			kind: errors.KindInvalidInput,
		},
		{
			name: "use after dealloc",
			src: `(func
				(memref.alloc (result %a))
				(memref.dealloc %a)
				(memref.load (result %x) %a))`,
			kind: errors.KindInvalidInput,
		},
		{
			name: "call",
			src:  `(func (func.call "g"))`,
			kind: errors.KindUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(irtext.MustParseFunc(tt.src), tt.cfg, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.New(errors.PhaseSimulate, tt.kind).Build())
		})
	}
}

func TestRun_ErrorInsideTeam(t *testing.T) {
	_, err := Run(irtext.MustParseFunc(`(func
		(omp.parallel
			(omp.barrier)
			(func.call "g")))`), Config{Workers: 3})

	assert.ErrorIs(t, err, errors.New(errors.PhaseSimulate, errors.KindUnsupported).Build())
}

// TestPassPreservesMemory simulates each program before and after the pass.
// Final memory must match. Region entries drop except where a parallel
// region is hoisted out of a branch that was not taken.
func TestPassPreservesMemory(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		args    []int64
		before  int
		after   int
	}{
		{
			name: "combine with read between",
			src: `(func (param %m %n)
				(omp.parallel
					(omp.thread_num (result %t))
					(memref.store %t %m %t))
				(arith.constant (result %k) 2)
				(memref.load (result %x) %m %k)
				(omp.parallel
					(omp.thread_num (result %u))
					(arith.addi (result %v) %x %u)
					(memref.store %v %n %u)))`,
			args:    []int64{1, 2},
			before:  2,
			after:   1,
		},
		{
			name: "loop around parallel",
			src: `(func (param %m)
				(arith.constant (result %c0) 0)
				(arith.constant (result %c1) 1)
				(arith.constant (result %c3) 3)
				(scf.for %c0 %c3 %c1 (args %i)
					(omp.parallel
						(omp.thread_num (result %t))
						(memref.load (result %x) %m %t)
						(arith.addi (result %y) %x %i)
						(memref.store %y %m %t))))`,
			args:    []int64{1},
			before:  3,
			after:   1,
		},
		{
			name: "taken branch around parallel",
			src: `(func (param %m %c)
				(scf.if %c (then
					(omp.parallel
						(omp.thread_num (result %t))
						(memref.store %c %m %t)))))`,
			args:    []int64{1, 1},
			before:  1,
			after:   1,
		},
		{
			name: "skipped branch around parallel",
			src: `(func (param %m %c)
				(scf.if %c (then
					(omp.parallel
						(omp.thread_num (result %t))
						(memref.store %c %m %t)))))`,
			args:    []int64{1, 0},
			before:  0,
			after:   1,
		},
		{
			name: "write blocks the merge",
			src: `(func (param %m)
				(omp.parallel
					(omp.thread_num (result %t))
					(memref.store %t %m %t))
				(arith.constant (result %k) 9)
				(memref.store %k %m %k)
				(omp.parallel
					(omp.thread_num (result %u))
					(memref.load (result %x) %m %k)
					(memref.store %x %m %u)))`,
			args:    []int64{1},
			before:  2,
			after:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Workers: 4}
			before := run(t, tt.src, cfg, tt.args...)

			f := irtext.MustParseFunc(tt.src)
			_, err := ompopt.Run(f, ompopt.DefaultConfig())
			require.NoError(t, err)
			after, err := Run(f, cfg, tt.args...)
			require.NoError(t, err)

			assert.Equal(t, before.Memory, after.Memory)
			assert.Equal(t, before.Returns, after.Returns)
			assert.Equal(t, tt.before, before.Regions)
			assert.Equal(t, tt.after, after.Regions)
		})
	}
}
