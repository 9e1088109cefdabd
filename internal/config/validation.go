package config

import "fmt"

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Processing.Workers < 0 {
		return fmt.Errorf("processing.workers must not be negative, got %d", c.Processing.Workers)
	}
	if t := c.Processing.ModifiedConfidenceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("processing.modified_confidence_threshold must be within [0, 1], got %v", t)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
