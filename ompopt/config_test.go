package ompopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/ompopt/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 47, cfg.MaxIterations)
	assert.Equal(t, 0, cfg.MaxRewrites)
	assert.True(t, cfg.EraseDeadOps)
	assert.True(t, cfg.Verify)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("unset keeps base", func(t *testing.T) {
		cfg, err := ConfigFromEnv(DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv(EnvMaxIterations, "5")
		t.Setenv(EnvMaxRewrites, "12")
		t.Setenv(EnvNoDCE, "true")
		t.Setenv(EnvVerify, "false")

		cfg, err := ConfigFromEnv(DefaultConfig())

		require.NoError(t, err)
		assert.Equal(t, Config{MaxIterations: 5, MaxRewrites: 12}, cfg)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv(EnvMaxIterations, "0")

		_, err := ConfigFromEnv(DefaultConfig())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "max iterations")
	})

	t.Run("negative rewrites", func(t *testing.T) {
		t.Setenv(EnvMaxRewrites, "-1")

		_, err := ConfigFromEnv(DefaultConfig())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "max rewrites")
	})

	t.Run("malformed", func(t *testing.T) {
		for _, tt := range []struct{ name, value string }{
			{EnvMaxIterations, "lots"},
			{EnvMaxRewrites, "1.5"},
			{EnvNoDCE, "maybe"},
			{EnvVerify, "sometimes"},
		} {
			t.Setenv(tt.name, tt.value)

			cfg, err := ConfigFromEnv(DefaultConfig())

			require.ErrorIs(t, err, errors.New(errors.PhaseConfig, errors.KindSyntax).Build(), tt.name)
			assert.Contains(t, err.Error(), tt.name)
			assert.Equal(t, DefaultConfig(), cfg)
			t.Setenv(tt.name, "")
		}
	})
}

func TestConfigFromEnv_SeesLaterChanges(t *testing.T) {
	cfg, err := ConfigFromEnv(DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, DefaultMaxIterations, cfg.MaxIterations)

	t.Setenv(EnvMaxIterations, "5")
	cfg, err = ConfigFromEnv(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxIterations)

	t.Setenv(EnvMaxIterations, "9")
	cfg, err = ConfigFromEnv(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.MaxIterations)
}
