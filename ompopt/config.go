package ompopt

import (
	"strconv"

	"github.com/xyproto/env/v2"

	"github.com/wippyai/ompopt/errors"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvMaxIterations = "OMPOPT_MAX_ITERATIONS"
	EnvMaxRewrites   = "OMPOPT_MAX_REWRITES"
	EnvNoDCE         = "OMPOPT_NO_DCE"
	EnvVerify        = "OMPOPT_VERIFY"
)

// ConfigFromEnv overlays the environment onto base. Unset variables keep
// the base value. A value that is not a number or a boolean is reported
// as a syntax error before range validation.
func ConfigFromEnv(base Config) (Config, error) {
	// env caches the environment on first use.
	env.Load()

	cfg := base
	var err error
	if cfg.MaxIterations, err = envInt(EnvMaxIterations, base.MaxIterations); err != nil {
		return base, err
	}
	if cfg.MaxRewrites, err = envInt(EnvMaxRewrites, base.MaxRewrites); err != nil {
		return base, err
	}
	noDCE, err := envBool(EnvNoDCE, !base.EraseDeadOps)
	if err != nil {
		return base, err
	}
	cfg.EraseDeadOps = !noDCE
	if cfg.Verify, err = envBool(EnvVerify, base.Verify); err != nil {
		return base, err
	}
	return cfg, cfg.Validate()
}

func envInt(name string, def int) (int, error) {
	if !env.Has(name) {
		return def, nil
	}
	if _, err := strconv.Atoi(env.Str(name)); err != nil {
		return def, malformed(name, "an integer")
	}
	return env.Int(name, def), nil
}

func envBool(name string, def bool) (bool, error) {
	if !env.Has(name) {
		return def, nil
	}
	v := env.Str(name)
	if !env.True(v) && !env.False(v) {
		return def, malformed(name, "a boolean")
	}
	return env.Bool(name), nil
}

func malformed(name, want string) error {
	return errors.New(errors.PhaseConfig, errors.KindSyntax).
		Value(env.Str(name)).
		Detail("%s must be %s, got %q", name, want, env.Str(name)).
		Build()
}
