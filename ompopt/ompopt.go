package ompopt

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/ompopt/errors"
	"github.com/wippyai/ompopt/ir"
	"github.com/wippyai/ompopt/rewrite"
)

// DefaultMaxIterations is the outer iteration cap of the pass.
const DefaultMaxIterations = 47

// Config controls a pass run.
type Config struct {
	// MaxIterations bounds the driver's outer iterations.
	MaxIterations int
	// MaxRewrites bounds the total number of rewrites; 0 means unlimited.
	MaxRewrites int
	// EraseDeadOps lets the driver erase trivially dead ops.
	EraseDeadOps bool
	// Verify checks the IR before and after the pass.
	Verify bool
}

// DefaultConfig returns the configuration used by the pass when none is
// given.
func DefaultConfig() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		EraseDeadOps:  true,
		Verify:        true,
	}
}

// Validate reports configuration values the driver cannot honor.
func (c Config) Validate() error {
	if c.MaxIterations <= 0 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("max iterations must be positive, got %d", c.MaxIterations))
	}
	if c.MaxRewrites < 0 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("max rewrites must not be negative, got %d", c.MaxRewrites))
	}
	return nil
}

// Result summarizes the pass on one function.
type Result struct {
	// ByPattern counts successful rewrites per pattern name.
	ByPattern  map[string]int
	Func       string
	Iterations int
	Rewrites   int
	Erased     int
	Converged  bool
}

// Patterns returns the rewrites of the pass in the order the driver tries
// them.
func Patterns() []rewrite.Pattern {
	return []rewrite.Pattern{
		CombineParallel{},
		ParallelForInterchange{},
		ParallelIfInterchange{},
	}
}

// Run optimizes f in place.
func Run(f *ir.Func, cfg Config) (Result, error) {
	return RunWithObserver(f, cfg, nil)
}

// RunWithObserver is Run with obs called after every rewrite.
func RunWithObserver(f *ir.Func, cfg Config, obs rewrite.Observer) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{Func: f.Name}, err
	}
	if cfg.Verify {
		if err := ir.Verify(f); err != nil {
			return Result{Func: f.Name}, errors.New(errors.PhaseVerify, errors.KindInvalidInput).
				Path(f.Name).
				Detail("input is not well formed").
				Cause(err).
				Build()
		}
	}

	d := rewrite.NewDriver(rewrite.Config{
		MaxIterations: cfg.MaxIterations,
		MaxRewrites:   cfg.MaxRewrites,
		EraseDeadOps:  cfg.EraseDeadOps,
	}, Patterns()...)
	if obs != nil {
		d.OnRewrite(obs)
	}
	dr := d.Run(f)
	res := Result{
		Func:       f.Name,
		Iterations: dr.Iterations,
		Rewrites:   dr.Rewrites,
		Erased:     dr.Erased,
		Converged:  dr.Converged,
		ByPattern:  dr.ByPattern,
	}

	log := Logger().With(zap.String("func", f.Name))
	if !res.Converged {
		log.Warn("pass stopped before reaching a fixpoint",
			zap.Int("iterations", res.Iterations),
			zap.Int("rewrites", res.Rewrites))
	}
	log.Debug("pass finished",
		zap.Int("iterations", res.Iterations),
		zap.Int("rewrites", res.Rewrites),
		zap.Any("patterns", res.ByPattern))

	if cfg.Verify {
		if err := ir.Verify(f); err != nil {
			return res, errors.New(errors.PhaseRewrite, errors.KindInvariant).
				Path(f.Name).
				Detail("rewritten IR is not well formed").
				Cause(err).
				Build()
		}
	}
	return res, nil
}

// RunAll optimizes every function. Functions are independent; a failure in
// one does not stop the others, and all failures are returned together.
func RunAll(funcs []*ir.Func, cfg Config) ([]Result, error) {
	results := make([]Result, 0, len(funcs))
	var errs error
	for _, f := range funcs {
		res, err := Run(f, cfg)
		results = append(results, res)
		errs = multierr.Append(errs, err)
	}
	return results, errs
}
