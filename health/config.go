package health

import "time"

type Config struct {
	// Timeout bounds each individual check
	Timeout time.Duration `mapstructure:"timeout"`
	// RedisCritical turns a Redis outage from degraded into unhealthy
	RedisCritical bool `mapstructure:"redis_critical"`
}

func DefaultConfig() Config {
	return Config{Timeout: 5 * time.Second}
}

func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultConfig().Timeout
	}
}
