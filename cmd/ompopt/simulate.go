package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ompopt"
	"github.com/wippyai/ompopt/sim"
)

func newSimCmd(opts *options) *cobra.Command {
	var (
		workers  int
		maxSteps int
		fn       string
		simArgs  []int64
	)
	cmd := &cobra.Command{
		Use:   "sim FILE",
		Short: "Simulate a function before and after the pass and compare",
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
			simCfg := sim.Config{Workers: workers, MaxSteps: maxSteps}

			before, err := sim.Run(f, simCfg, simArgs...)
			if err != nil {
				return err
			}
			if _, err := ompopt.Run(f, cfg); err != nil {
				return err
			}
			after, err := sim.Run(f, simCfg, simArgs...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRun(out, "before", before)
			printRun(out, "after", after)
			if cell, ok := firstDifference(before, after); ok {
				return errors.New(errors.PhaseSimulate, errors.KindInvariant).
					Path(f.Name).
					Detail("memory differs at %s: %d before, %d after", cell, before.Memory[cell], after.Memory[cell]).
					Build()
			}
			fmt.Fprintln(out, "memory matches")
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "w", sim.DefaultWorkers, "Team size of each parallel region")
	cmd.Flags().IntVar(&maxSteps, "max-steps", sim.DefaultMaxSteps, "Op execution budget")
	cmd.Flags().StringVarP(&fn, "func", "f", "", "Function to simulate (default first)")
	cmd.Flags().Int64SliceVar(&simArgs, "args", nil, "Integer arguments bound to the function parameters")
	return cmd
}

func printRun(w io.Writer, label string, res *sim.Result) {
	fmt.Fprintf(w, "%s: %d regions, %d barriers, %d phases, %d steps\n",
		label, res.Regions, res.Barriers, res.Phases, res.Steps)
	for _, c := range res.Cells() {
		fmt.Fprintf(w, "  %s = %d\n", c, res.Memory[c])
	}
	if len(res.Returns) > 0 {
		fmt.Fprintf(w, "  return %v\n", res.Returns)
	}
}

func firstDifference(a, b *sim.Result) (sim.Cell, bool) {
	for _, c := range a.Cells() {
		if v, ok := b.Memory[c]; !ok || v != a.Memory[c] {
			return c, true
		}
	}
	for _, c := range b.Cells() {
		if _, ok := a.Memory[c]; !ok {
			return c, true
		}
	}
	return sim.Cell{}, false
}
