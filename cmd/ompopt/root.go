package main

import (
	stderrors "errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/irtext"
	"github.com/wippyai/ompopt/ompopt"
	"github.com/wippyai/ompopt/rewrite"
	"github.com/wippyai/ompopt/sim"
)

// errOutOfRange matches configuration values that parse but that the pass
// cannot honor.
var errOutOfRange = errors.New(errors.PhaseConfig, errors.KindInvalidInput).Build()

// options holds the persistent flags shared by every subcommand.
type options struct {
	logger        *zap.Logger
	maxIterations int
	maxRewrites   int
	verbose       bool
	noDCE         bool
	verify        bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "ompopt",
		Short:         "ompopt - merge and hoist OpenMP-style parallel regions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = l
			rewrite.SetLogger(l.Named("rewrite"))
			ompopt.SetLogger(l.Named("ompopt"))
			sim.SetLogger(l.Named("sim"))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every rewrite")
	flags.IntVar(&opts.maxIterations, "max-iterations", ompopt.DefaultMaxIterations, "Outer iteration cap of the rewrite driver")
	flags.IntVar(&opts.maxRewrites, "max-rewrites", 0, "Stop after this many rewrites (0 means unlimited)")
	flags.BoolVar(&opts.noDCE, "no-dce", false, "Keep trivially dead ops")
	flags.BoolVar(&opts.verify, "verify", true, "Verify the IR before and after the pass")

	root.AddCommand(newOptCmd(opts))
	root.AddCommand(newVerifyCmd(opts))
	root.AddCommand(newSimCmd(opts))
	root.AddCommand(newStepCmd(opts))
	return root
}

// newLogger builds a development logger when verbose, otherwise a
// production logger that only reports warnings.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}

// config resolves the pass configuration: defaults, then the environment,
// then flags given on the command line.
func (o *options) config(cmd *cobra.Command) (ompopt.Config, error) {
	// Range errors are checked again below, once flags had their say.
	cfg, err := ompopt.ConfigFromEnv(ompopt.DefaultConfig())
	if err != nil && !stderrors.Is(err, errOutOfRange) {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = o.maxIterations
	}
	if flags.Changed("max-rewrites") {
		cfg.MaxRewrites = o.maxRewrites
	}
	if flags.Changed("no-dce") {
		cfg.EraseDeadOps = !o.noDCE
	}
	if flags.Changed("verify") {
		cfg.Verify = o.verify
	}
	return cfg, cfg.Validate()
}

// load parses the named file, or standard input for "-".
func load(cmd *cobra.Command, path string) ([]*ir.Func, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, "read "+path)
	}
	funcs, err := irtext.Parse(string(data))
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	return funcs, nil
}

// pick returns the function called name, or the first one when name is
// empty.
func pick(funcs []*ir.Func, name string) (*ir.Func, error) {
	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "input holds no functions")
	}
	if name == "" {
		return funcs[0], nil
	}
	for _, f := range funcs {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseParse, "function", name)
}
