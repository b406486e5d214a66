package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/wippyai/ompopt/irtext"
	"github.com/wippyai/ompopt/ompopt"
)

func newOptCmd(opts *options) *cobra.Command {
	var stats bool
	cmd := &cobra.Command{
		Use:   "opt FILE",
		Short: "Optimize every function and print the result",
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
			results, err := ompopt.RunAll(funcs, cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), irtext.FormatAll(funcs))
			if stats {
				for _, res := range results {
					printStats(cmd, res)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stats, "stats", false, "Print rewrite statistics to stderr")
	return cmd
}

func printStats(cmd *cobra.Command, res ompopt.Result) {
	w := cmd.ErrOrStderr()
	name := res.Func
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Fprintf(w, "%s: %d rewrites, %d erased, %d iterations, converged=%t\n",
		name, res.Rewrites, res.Erased, res.Iterations, res.Converged)
	for _, p := range slices.Sorted(maps.Keys(res.ByPattern)) {
		fmt.Fprintf(w, "  %-26s %d\n", p, res.ByPattern[p])
	}
}
