package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext"
	"github.com/wippyai/ompopt/ompopt"
)

const twoRegions = `(func $f (param %m %i)
  (omp.parallel
    (memref.store %i %m %i))
  (memref.load (result %x) %m %i)
  (omp.parallel
    (memref.store %x %m %i)))
`

const merged = `(func $f (param %arg0 %arg1)
  (omp.parallel
    (memref.store %arg1 %arg0 %arg1)
    (omp.barrier)
    (memref.load (result %0) %arg0 %arg1)
    (memref.store %0 %arg0 %arg1)))
`

func writeFile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.ir")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestOpt(t *testing.T) {
	out, stats, err := execute(t, "", "opt", writeFile(t, twoRegions), "--stats")

	require.NoError(t, err)
	assert.Equal(t, merged, out)
	assert.Contains(t, stats, "f: 1 rewrites")
	assert.Contains(t, stats, "combine-parallel")
}

func TestOpt_Stdin(t *testing.T) {
	out, _, err := execute(t, twoRegions, "opt", "-")

	require.NoError(t, err)
	assert.Equal(t, merged, out)
}

func TestOpt_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "opt", filepath.Join(t.TempDir(), "missing.ir"))

	assert.ErrorIs(t, err, errors.New(errors.PhaseParse, errors.KindNotFound).Build())
}

func TestOpt_SyntaxError(t *testing.T) {
	path := writeFile(t, "(func (omp.parallel)")

	_, _, err := execute(t, "", "opt", path)

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New(errors.PhaseParse, errors.KindSyntax).Build())
	assert.Contains(t, err.Error(), "parse "+path)
}

func TestOpt_MalformedEnv(t *testing.T) {
	path := writeFile(t, twoRegions)
	t.Setenv(ompopt.EnvMaxRewrites, "many")

	_, _, err := execute(t, "", "opt", path)

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New(errors.PhaseConfig, errors.KindSyntax).Build())
	assert.Contains(t, err.Error(), ompopt.EnvMaxRewrites)
}

func TestOpt_ConfigPrecedence(t *testing.T) {
	path := writeFile(t, twoRegions)

	t.Setenv(ompopt.EnvMaxIterations, "0")
	_, _, err := execute(t, "", "opt", path)
	assert.ErrorIs(t, err, errors.New(errors.PhaseConfig, errors.KindInvalidInput).Build())

	out, _, err := execute(t, "", "opt", path, "--max-iterations", "5")
	require.NoError(t, err)
	assert.Equal(t, merged, out)
}

func TestOpt_MaxRewritesFlag(t *testing.T) {
	src := `(func (param %m %i)
  (omp.parallel (memref.store %i %m %i))
  (omp.parallel (memref.store %i %m %i))
  (omp.parallel (memref.store %i %m %i)))
`
	out, _, err := execute(t, "", "opt", writeFile(t, src), "--max-rewrites", "1")

	require.NoError(t, err)
	f := irtext.MustParseFunc(out)
	assert.Equal(t, 2, f.CountKind(ir.KindParallel))
}

func TestVerify(t *testing.T) {
	out, _, err := execute(t, "", "verify", writeFile(t, twoRegions))
	require.NoError(t, err)
	assert.Equal(t, "1 functions ok\n", out)

	_, _, err = execute(t, "", "verify", writeFile(t, `(func
  (omp.parallel (region (block (scf.yield)))))`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected terminator")
}

func TestSim(t *testing.T) {
	src := `(func (param %m)
  (omp.parallel
    (omp.thread_num (result %t))
    (memref.store %t %m %t))
  (omp.parallel
    (omp.thread_num (result %u))
    (arith.addi (result %v) %u %u)
    (memref.store %v %m %u)))
`
	out, _, err := execute(t, "", "sim", writeFile(t, src), "--workers", "2", "--args", "3")

	require.NoError(t, err)
	assert.Contains(t, out, "before: 2 regions, 0 barriers, 2 phases")
	assert.Contains(t, out, "after: 1 regions, 1 barriers, 2 phases")
	assert.Contains(t, out, "  3[1] = 2\n")
	assert.Contains(t, out, "memory matches")
}

func TestSim_UnknownFunc(t *testing.T) {
	_, _, err := execute(t, "", "sim", writeFile(t, twoRegions), "--func", "g")

	assert.ErrorIs(t, err, errors.New(errors.PhaseParse, errors.KindNotFound).Build())
}

func TestStep(t *testing.T) {
	src := `(func (param %m %n)
  (scf.for %n %n %n (args %i)
    (omp.parallel (memref.store %i %m %i))))
`
	out, stats, err := execute(t, "", "step", writeFile(t, src))

	require.NoError(t, err)
	assert.Contains(t, out, ";; step 0: input\n")
	assert.Contains(t, out, ";; step 1: parallel-for-interchange on omp.parallel (iteration 1)\n")
	assert.Contains(t, stats, "parallel-for-interchange")

	funcs, err := irtext.Parse(out)
	require.NoError(t, err)
	assert.Len(t, funcs, 2)
}

func TestStepper(t *testing.T) {
	steps := []snapshot{
		{title: "input", text: "(func\n  (a))\n"},
		{title: "one", text: "(func\n  (b))\n"},
	}
	m := newStepperModel(steps)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	assert.Contains(t, m.View(), "0/1")
	assert.Contains(t, m.View(), "(a)")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.current)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.current, "stays on the last step")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	assert.True(t, m.diff)
	assert.Contains(t, m.content(), "-  (a))")
	assert.Contains(t, m.content(), "+  (b))")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, m.current)
	assert.Equal(t, steps[0].text, m.content(), "the first step has nothing to diff against")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestStepDiff_NoChange(t *testing.T) {
	assert.Equal(t, "(no change)\n", stepDiff("(func)\n", "(func)\n"))
}
