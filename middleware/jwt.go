package middleware

import (
	"context"
	"strings"

	"github.com/KOMKZ/go-yogan-chat/httpx"
	"github.com/KOMKZ/go-yogan-chat/jwt"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "jwt_claims"
	userIDKey = "user_id"
)

// TokenVerifier is satisfied by *jwt.TokenManager
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
}

type JWTConfig struct {
	// TokenLookup is a comma-separated list of source:name pairs tried in order
	TokenLookup   string
	TokenHeadName string
	Skipper       func(*gin.Context) bool
}

// DefaultJWTConfig reads the bearer header first, then the token query parameter
var DefaultJWTConfig = JWTConfig{
	TokenLookup:   "header:Authorization,query:token",
	TokenHeadName: "Bearer",
}

// JWT rejects requests without a valid access token
func JWT(tokens TokenVerifier) gin.HandlerFunc {
	return JWTWithConfig(tokens, DefaultJWTConfig)
}

func JWTWithConfig(tokens TokenVerifier, cfg JWTConfig) gin.HandlerFunc {
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = DefaultJWTConfig.TokenLookup
	}
	lookups := strings.Split(cfg.TokenLookup, ",")

	return func(c *gin.Context) {
		if cfg.Skipper != nil && cfg.Skipper(c) {
			c.Next()
			return
		}

		claims, err := tokens.Verify(c.Request.Context(), extractToken(c, lookups, cfg.TokenHeadName))
		if err != nil {
			httpx.HandleError(c, err)
			c.Abort()
			return
		}
		// Verify already rejected malformed subjects
		id, _ := claims.UserID()

		c.Set(claimsKey, claims)
		c.Set(userIDKey, id)
		c.Next()
	}
}

func extractToken(c *gin.Context, lookups []string, head string) string {
	for _, lookup := range lookups {
		source, name, ok := strings.Cut(strings.TrimSpace(lookup), ":")
		if !ok {
			continue
		}
		var token string
		switch source {
		case "header":
			token = c.GetHeader(name)
			if head != "" && len(token) > len(head) && strings.EqualFold(token[:len(head)+1], head+" ") {
				token = token[len(head)+1:]
			}
		case "query":
			token = c.Query(name)
		case "cookie":
			token, _ = c.Cookie(name)
		}
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	return ""
}

func Claims(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// UserID is the authenticated subject set by JWT
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
