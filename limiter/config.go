package limiter

import (
	"fmt"
	"strings"
)

// Config of the request rate limiter
type Config struct {
	Enabled bool `mapstructure:"enabled"`

	// Store: redis or memory; redis shares buckets across instances
	Store     string `mapstructure:"store"`
	KeyPrefix string `mapstructure:"key_prefix"`

	Default Rule `mapstructure:"default"`

	// Routes overrides Default per "METHOD /route/pattern", e.g. "POST /api/auth/login"
	Routes map[string]Rule `mapstructure:"routes"`
}

// Rule is a token bucket: Rate tokens per second, at most Capacity banked
type Rule struct {
	Rate     float64 `mapstructure:"rate"`
	Capacity int64   `mapstructure:"capacity"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:   false,
		Store:     "redis",
		KeyPrefix: "chat:ratelimit:",
		Default:   Rule{Rate: 20, Capacity: 40},
		Routes:    map[string]Rule{},
	}
}

func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.Store == "" {
		c.Store = d.Store
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = d.KeyPrefix
	}
	if c.Default.Rate <= 0 {
		c.Default.Rate = d.Default.Rate
	}
	if c.Default.Capacity <= 0 {
		c.Default.Capacity = d.Default.Capacity
	}
	if c.Routes == nil {
		c.Routes = map[string]Rule{}
	}
	// keys arrive lower-cased from viper
	normalized := make(map[string]Rule, len(c.Routes))
	for route, r := range c.Routes {
		if r.Rate <= 0 {
			r.Rate = c.Default.Rate
		}
		if r.Capacity <= 0 {
			r.Capacity = c.Default.Capacity
		}
		normalized[routeKey(route)] = r
	}
	c.Routes = normalized
}

func (c Config) Validate() error {
	switch c.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("limiter: unknown store %q", c.Store)
	}
	if c.Default.Rate < 0 || c.Default.Capacity < 0 {
		return fmt.Errorf("limiter: default rate and capacity cannot be negative")
	}
	return nil
}

func routeKey(route string) string {
	return strings.ToLower(strings.TrimSpace(route))
}
