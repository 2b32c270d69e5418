package pipeline

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds ingestion pipeline settings.
type Config struct {
	// PollInterval is how often Watch scans the bucket.
	PollInterval time.Duration

	// PollTimeout bounds one whole poll cycle.
	PollTimeout time.Duration

	// MaxConcurrent bounds in-flight document extractions per poll.
	MaxConcurrent int

	// MaxRetries is how many times a transient extraction failure is
	// retried within one poll before the file is left for the next.
	MaxRetries int

	// RetryBackoff is the initial delay between retries.
	RetryBackoff time.Duration

	// Prefix narrows the bucket listing.
	Prefix string

	// TempDir is where failed documents are spooled for inspection.
	// Empty disables spooling.
	TempDir string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		PollInterval:  60 * time.Second,
		PollTimeout:   10 * time.Minute,
		MaxConcurrent: 4,
		MaxRetries:    1,
		RetryBackoff:  2 * time.Second,
	}
}

// FromEnv applies environment overrides.
func (c Config) FromEnv() Config {
	if v := os.Getenv("RECONCILE_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv("RECONCILE_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	return c
}

// Validate checks the config
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("poll timeout must be positive")
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max concurrent must be at least 1")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}
