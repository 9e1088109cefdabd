// Package config provides configuration structures and loading for addrbin.
package config

// Config represents the complete application configuration.
type Config struct {
	Processing   ProcessingConfig   `yaml:"processing" mapstructure:"processing"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// ProcessingConfig represents ingestion and resolution settings.
type ProcessingConfig struct {
	// Workers bounds parallel file parsing and per-version resolution.
	// Zero means one worker per CPU.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// ModifiedConfidenceThreshold excludes modified-kind diff matches below
	// this confidence from ID inheritance. Range 0..1; zero disables the cut.
	ModifiedConfidenceThreshold float64 `yaml:"modified_confidence_threshold" mapstructure:"modified_confidence_threshold"`
}

// OutputConfig represents where generated version bins are written.
type OutputConfig struct {
	// Dir is the output directory for new bins. Empty means the input root.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// VerificationConfig represents post-write verification settings.
type VerificationConfig struct {
	// SkipVerification disables decoding each written bin back and
	// comparing it against the resolved table.
	SkipVerification bool `yaml:"skip_verification" mapstructure:"skip_verification"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Processing: ProcessingConfig{
			Workers:                     0,
			ModifiedConfidenceThreshold: 0,
		},
		Verification: VerificationConfig{
			SkipVerification: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// ApplyOverrides applies CLI flag values over the loaded configuration.
// Empty strings and zero counts leave the configuration untouched. The
// threshold uses a negative sentinel for "not set", since zero is a valid
// override that disables the confidence cut.
func (c *Config) ApplyOverrides(logLevel, logFormat string, workers int, modifiedThreshold float64, skipVerify bool) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if workers > 0 {
		c.Processing.Workers = workers
	}
	if modifiedThreshold >= 0 {
		c.Processing.ModifiedConfidenceThreshold = modifiedThreshold
	}
	if skipVerify {
		c.Verification.SkipVerification = true
	}
}
