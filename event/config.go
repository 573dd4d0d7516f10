package event

type Config struct {
	// PoolSize caps concurrent async listeners
	PoolSize int `mapstructure:"pool_size"`
	// SetAllSync runs async listeners inline; tests use it to assert on side effects
	SetAllSync bool `mapstructure:"set_all_sync"`
}

const defaultPoolSize = 100

func DefaultConfig() Config {
	return Config{PoolSize: defaultPoolSize}
}

func (c *Config) ApplyDefaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
}
