package jwt

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims of an access token; the subject is the user id
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type,omitempty"`
}

// UserID parses the subject
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrTokenInvalid.WithMsg("Invalid token subject")
	}
	return id, nil
}

// TTL is the remaining lifetime, zero once expired
func (c *Claims) TTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := time.Until(c.ExpiresAt.Time); d > 0 {
		return d
	}
	return 0
}
