package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, cfg.Processing.Workers)
	assert.Equal(t, 0.0, cfg.Processing.ModifiedConfidenceThreshold)
	assert.Empty(t, cfg.Output.Dir)
	assert.False(t, cfg.Verification.SkipVerification)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addrbin.yaml")
	content := `
processing:
  workers: 4
  modified_confidence_threshold: 0.75
output:
  dir: /tmp/bins
verification:
  skip_verification: true
logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Processing.Workers)
	assert.Equal(t, 0.75, cfg.Processing.ModifiedConfidenceThreshold)
	assert.Equal(t, "/tmp/bins", cfg.Output.Dir)
	assert.True(t, cfg.Verification.SkipVerification)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	// Unset keys keep their defaults.
	assert.Equal(t, "stdout", cfg.Logging.Output)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addrbin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("processing: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEnvVarSubstitution(t *testing.T) {
	t.Setenv("ADDRBIN_TEST_OUT", "/data/bins")

	path := filepath.Join(t.TempDir(), "addrbin.yaml")
	content := "output:\n  dir: ${ADDRBIN_TEST_OUT}/out\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/bins/out", cfg.Output.Dir)
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides("debug", "json", 8, 0.5, true)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 8, cfg.Processing.Workers)
	assert.Equal(t, 0.5, cfg.Processing.ModifiedConfidenceThreshold)
	assert.True(t, cfg.Verification.SkipVerification)

	// Unset values leave the configuration untouched.
	cfg.ApplyOverrides("", "", 0, -1, false)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 8, cfg.Processing.Workers)
	assert.Equal(t, 0.5, cfg.Processing.ModifiedConfidenceThreshold)
	assert.True(t, cfg.Verification.SkipVerification)
}

func TestApplyOverridesThresholdZero(t *testing.T) {
	// An explicit zero disables the confidence cut even when the config
	// file set one; only a negative value means "not set".
	cfg := DefaultConfig()
	cfg.Processing.ModifiedConfidenceThreshold = 0.8

	cfg.ApplyOverrides("", "", 0, 0, false)
	assert.Equal(t, 0.0, cfg.Processing.ModifiedConfidenceThreshold)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative workers", func(c *Config) { c.Processing.Workers = -1 }, "workers"},
		{"threshold too high", func(c *Config) { c.Processing.ModifiedConfidenceThreshold = 1.5 }, "modified_confidence_threshold"},
		{"threshold negative", func(c *Config) { c.Processing.ModifiedConfidenceThreshold = -0.1 }, "modified_confidence_threshold"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
