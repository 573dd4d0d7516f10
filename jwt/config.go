package jwt

import (
	"fmt"
	"time"
)

type Config struct {
	// HS256, HS384 or HS512
	Algorithm string        `mapstructure:"algorithm"`
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	ClockSkew time.Duration `mapstructure:"clock_skew"`

	// Revocation enables logout; revoked token ids live until the token would expire
	Revocation RevocationConfig `mapstructure:"revocation"`
}

type RevocationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = "HS256"
	}
	if c.AccessTTL == 0 {
		c.AccessTTL = 30 * time.Minute
	}
	if c.Issuer == "" {
		c.Issuer = "yogan-chat"
	}
	if c.ClockSkew == 0 {
		c.ClockSkew = 30 * time.Second
	}
	if c.Revocation.KeyPrefix == "" {
		c.Revocation.KeyPrefix = "chat:jwt:revoked:"
	}
}

func (c Config) Validate() error {
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return ErrAlgorithmNotSupported.WithMsgf("jwt: algorithm %q not supported", c.Algorithm)
	}
	if c.Secret == "" {
		return ErrSecretEmpty
	}
	if c.AccessTTL <= 0 {
		return fmt.Errorf("[JWT] access_ttl must be positive")
	}
	return nil
}
