package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/wippyai/ompopt/ir"
)

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify FILE",
		Short: "Check that every function is well formed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			funcs, err := load(cmd, args[0])
			if err != nil {
				return err
			}
			var errs error
			for _, f := range funcs {
				errs = multierr.Append(errs, ir.Verify(f))
			}
			if errs != nil {
				return errs
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d functions ok\n", len(funcs))
			return nil
		},
	}
}
