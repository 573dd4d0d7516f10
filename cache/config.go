package cache

import (
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-chat/breaker"
)

// Config of the cache layer. Backend connection settings live in the redis section.
type Config struct {
	// Enabled=false turns every operation into a miss / no-op
	Enabled bool `mapstructure:"enabled"`

	// Store: redis or memory; redis falls back to memory when the redis section is disabled
	Store string `mapstructure:"store"`
	// KeyPrefix namespaces cache keys apart from the other Redis users
	// (rate limiter, token revocation, login attempts) so broad purges never reach them
	KeyPrefix string `mapstructure:"key_prefix"`

	DefaultTTL      time.Duration `mapstructure:"default_ttl"`
	UserTTL         time.Duration `mapstructure:"user_ttl"`
	MessageTTL      time.Duration `mapstructure:"message_ttl"`
	ConversationTTL time.Duration `mapstructure:"conversation_ttl"`
	UnreadTTL       time.Duration `mapstructure:"unread_ttl"`
	OnlineListTTL   time.Duration `mapstructure:"online_list_ttl"`
	PresenceTTL     time.Duration `mapstructure:"presence_ttl"`
	RecentTTL       time.Duration `mapstructure:"recent_ttl"`
	SearchTTL       time.Duration `mapstructure:"search_ttl"`

	// Singleflight collapses concurrent misses on one key into a single producer call
	Singleflight bool `mapstructure:"singleflight"`

	// PurgeTimeout bounds one mutation's whole invalidation fan-out
	PurgeTimeout time.Duration `mapstructure:"purge_timeout"`

	// Breaker guards the redis store; the memory store never fails
	Breaker breaker.Config `mapstructure:"breaker"`

	// Memory store bounds
	MemoryMaxEntries    int           `mapstructure:"memory_max_entries"`
	MemoryCleanInterval time.Duration `mapstructure:"memory_clean_interval"`
}

const DefaultKeyPrefix = "chat:cache:"

func DefaultConfig() Config {
	c := Config{Enabled: true, Store: "redis", KeyPrefix: DefaultKeyPrefix}
	c.Breaker = breaker.Config{Enabled: true, ConsecutiveFailures: 5, Timeout: 10 * time.Second, HalfOpenRequests: 1}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero values
func (c *Config) ApplyDefaults() {
	if c.Store == "" {
		c.Store = "redis"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = DefaultKeyPrefix
	}
	setDefault(&c.PurgeTimeout, 2*time.Second)
	setDefault(&c.DefaultTTL, 5*time.Minute)
	setDefault(&c.UserTTL, time.Hour)
	setDefault(&c.MessageTTL, 30*time.Minute)
	setDefault(&c.ConversationTTL, 15*time.Minute)
	setDefault(&c.UnreadTTL, time.Minute)
	setDefault(&c.OnlineListTTL, time.Minute)
	setDefault(&c.PresenceTTL, 5*time.Minute)
	setDefault(&c.RecentTTL, 5*time.Minute)
	setDefault(&c.SearchTTL, 5*time.Minute)
	if c.MemoryMaxEntries <= 0 {
		c.MemoryMaxEntries = 10000
	}
	if c.MemoryCleanInterval <= 0 {
		c.MemoryCleanInterval = time.Minute
	}
	c.Breaker.ApplyDefaults()
}

func setDefault(d *time.Duration, v time.Duration) {
	if *d <= 0 {
		*d = v
	}
}

func (c Config) Validate() error {
	switch c.Store {
	case "redis", "memory":
	default:
		return ErrConfigInvalid.WithMsg(fmt.Sprintf("unknown cache store %q", c.Store))
	}
	if err := c.Breaker.Validate(); err != nil {
		return ErrConfigInvalid.Wrap(err)
	}
	return nil
}
