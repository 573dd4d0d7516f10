package auth

import (
	"fmt"
	"time"
)

type Config struct {
	BcryptCost   int                `mapstructure:"bcrypt_cost"`
	Policy       PasswordPolicy     `mapstructure:"policy"`
	LoginAttempt LoginAttemptConfig `mapstructure:"login_attempt"`
}

// PasswordPolicy is checked at registration only
type PasswordPolicy struct {
	MinLength          int      `mapstructure:"min_length"`
	MaxLength          int      `mapstructure:"max_length"`
	RequireUppercase   bool     `mapstructure:"require_uppercase"`
	RequireLowercase   bool     `mapstructure:"require_lowercase"`
	RequireDigit       bool     `mapstructure:"require_digit"`
	RequireSpecialChar bool     `mapstructure:"require_special_char"`
	Blacklist          []string `mapstructure:"blacklist"`
}

// LoginAttemptConfig locks a username after repeated failures
type LoginAttemptConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	LockoutDuration time.Duration `mapstructure:"lockout_duration"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

func DefaultConfig() Config {
	c := Config{LoginAttempt: LoginAttemptConfig{Enabled: true}}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Policy.MinLength == 0 {
		c.Policy.MinLength = 6
	}
	if c.Policy.MaxLength == 0 {
		// bcrypt ignores everything past 72 bytes
		c.Policy.MaxLength = maxBcryptInput
	}
	if c.LoginAttempt.MaxAttempts == 0 {
		c.LoginAttempt.MaxAttempts = 5
	}
	if c.LoginAttempt.LockoutDuration == 0 {
		c.LoginAttempt.LockoutDuration = 15 * time.Minute
	}
	if c.LoginAttempt.KeyPrefix == "" {
		c.LoginAttempt.KeyPrefix = "chat:login-attempt:"
	}
}

func (c Config) Validate() error {
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("[Auth] bcrypt_cost must be between 4 and 31, got: %d", c.BcryptCost)
	}
	if c.Policy.MaxLength > maxBcryptInput {
		return fmt.Errorf("[Auth] password max_length %d exceeds the bcrypt input limit of %d bytes", c.Policy.MaxLength, maxBcryptInput)
	}
	if c.Policy.MinLength < 1 || c.Policy.MinLength > c.Policy.MaxLength {
		return fmt.Errorf("[Auth] invalid password length bounds %d..%d", c.Policy.MinLength, c.Policy.MaxLength)
	}
	if c.LoginAttempt.Enabled && c.LoginAttempt.MaxAttempts < 1 {
		return fmt.Errorf("[Auth] login_attempt.max_attempts must be >= 1")
	}
	return nil
}
