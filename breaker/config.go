package breaker

import (
	"fmt"
	"time"
)

type Config struct {
	Enabled bool `mapstructure:"enabled"`

	// ConsecutiveFailures in Closed state that open the circuit
	ConsecutiveFailures int `mapstructure:"consecutive_failures"`

	// Timeout is how long the circuit stays Open before probing
	Timeout time.Duration `mapstructure:"timeout"`

	// HalfOpenRequests probes allowed, all must succeed to close
	HalfOpenRequests int `mapstructure:"half_open_requests"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:             false,
		ConsecutiveFailures: 5,
		Timeout:             30 * time.Second,
		HalfOpenRequests:    1,
	}
}

func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.ConsecutiveFailures <= 0 {
		c.ConsecutiveFailures = d.ConsecutiveFailures
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.HalfOpenRequests <= 0 {
		c.HalfOpenRequests = d.HalfOpenRequests
	}
}

func (c Config) Validate() error {
	if c.ConsecutiveFailures < 0 {
		return fmt.Errorf("breaker: consecutive_failures cannot be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("breaker: timeout cannot be negative")
	}
	if c.HalfOpenRequests < 0 {
		return fmt.Errorf("breaker: half_open_requests cannot be negative")
	}
	return nil
}
