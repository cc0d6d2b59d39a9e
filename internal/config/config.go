// Package config holds the application configuration, layered from
// defaults, an optional config file, environment variables and CLI flags.
package config

import "time"

// Config represents the application configuration
type Config struct {
	Policy      PolicyConfig      `mapstructure:"policy" yaml:"policy"`
	Validators  ValidatorsConfig  `mapstructure:"validators" yaml:"validators"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// PolicyConfig controls how findings map to process outcomes
type PolicyConfig struct {
	// FailOnBreaking makes diff exit non-zero when breaking changes exist
	FailOnBreaking bool `mapstructure:"fail_on_breaking" yaml:"fail_on_breaking"`
	// FailOnWarnings promotes validation warnings to failures
	FailOnWarnings bool `mapstructure:"fail_on_warnings" yaml:"fail_on_warnings"`
}

// ValidatorsConfig selects which validators run by default
type ValidatorsConfig struct {
	// Only restricts runs to the named validators; empty means all
	Only []string `mapstructure:"only" yaml:"only"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Workers int           `mapstructure:"workers" yaml:"workers"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
	InMemory  bool          `mapstructure:"in_memory" yaml:"in_memory"`
}

// OutputConfig contains report output settings
type OutputConfig struct {
	// Format is "text" or "json"
	Format string `mapstructure:"format" yaml:"format"`
	// File writes the report there instead of stdout; empty means stdout
	File string `mapstructure:"file" yaml:"file"`
	// Compress wraps file output in zstd
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration and repairs out-of-range values
func (c *Config) Validate() error {
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Concurrency.Timeout < time.Second {
		c.Concurrency.Timeout = DefaultTimeout
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		c.Output.Format = DefaultOutputFormat
	}
	return nil
}
