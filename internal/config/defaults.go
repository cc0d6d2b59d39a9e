package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Policy defaults
	DefaultFailOnBreaking = true
	DefaultFailOnWarnings = false

	// Concurrency defaults
	DefaultWorkers = 5
	DefaultTimeout = 30 * time.Second

	// Cache defaults
	DefaultCacheEnabled = true
	DefaultCacheTTL     = 24 * time.Hour

	// Output defaults
	DefaultOutputFormat = "text"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".protokit"
	}
	return filepath.Join(home, ".protokit")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Policy: PolicyConfig{
			FailOnBreaking: DefaultFailOnBreaking,
			FailOnWarnings: DefaultFailOnWarnings,
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
			Timeout: DefaultTimeout,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
