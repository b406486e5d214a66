package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext"
	"github.com/wippyai/ompopt/ompopt"
	"github.com/wippyai/ompopt/rewrite"
)

// snapshot is the IR of a function after one rewrite.
type snapshot struct {
	title string
	text  string
}

func newStepCmd(opts *options) *cobra.Command {
	var (
		interactive bool
		fn          string
	)
	cmd := &cobra.Command{
		Use:   "step FILE",
		Short: "Show the IR after every rewrite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			funcs, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := pick(funcs, fn)
			if err != nil {
				return err
			}
			steps, res, err := record(f, cfg)
			if err != nil {
				return err
			}
			if interactive {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return errors.InvalidInput(errors.PhaseConfig, "interactive mode needs a terminal")
				}
				return runStepper(steps)
			}
			printSteps(cmd.OutOrStdout(), steps)
			printStats(cmd, res)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the steps in a TUI")
	cmd.Flags().StringVarP(&fn, "func", "f", "", "Function to step through (default first)")
	return cmd
}

// record runs the pass on f and captures the IR before it and after every
// rewrite.
func record(f *ir.Func, cfg ompopt.Config) ([]snapshot, ompopt.Result, error) {
	steps := []snapshot{{title: "input", text: irtext.Format(f)}}
	res, err := ompopt.RunWithObserver(f, cfg, func(f *ir.Func, ev rewrite.Event) {
		steps = append(steps, snapshot{
			title: fmt.Sprintf("%s on %s (iteration %d)", ev.Pattern, ev.Root, ev.Iteration),
			text:  irtext.Format(f),
		})
	})
	return steps, res, err
}

// printSteps writes the snapshots as IR text separated by comment lines,
// so the output parses again.
func printSteps(w io.Writer, steps []snapshot) {
	for i, s := range steps {
		fmt.Fprintf(w, ";; step %d: %s\n%s", i, s.title, s.text)
	}
}
