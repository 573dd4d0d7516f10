// Package jwt issues and verifies the bearer tokens of the chat API
package jwt

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenTypeAccess = "access"

// TokenManager signs and verifies access tokens
type TokenManager struct {
	cfg           Config
	signingMethod jwt.SigningMethod
	key           []byte
	revocations   RevocationStore
	log           *logger.CtxZapLogger
	now           func() time.Time
}

// NewTokenManager; revocations may be nil when logout is not needed
func NewTokenManager(cfg Config, revocations RevocationStore, log *logger.CtxZapLogger) (*TokenManager, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &TokenManager{
		cfg:         cfg,
		key:         []byte(cfg.Secret),
		revocations: revocations,
		log:         log,
		now:         time.Now,
	}
	if !cfg.Revocation.Enabled {
		m.revocations = nil
	}
	switch cfg.Algorithm {
	case "HS256":
		m.signingMethod = jwt.SigningMethodHS256
	case "HS384":
		m.signingMethod = jwt.SigningMethodHS384
	case "HS512":
		m.signingMethod = jwt.SigningMethodHS512
	}
	return m, nil
}

// Issue returns a signed access token whose subject is userID
func (m *TokenManager) Issue(ctx context.Context, userID int64) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
		TokenType: tokenTypeAccess,
	}
	if m.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{m.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(m.signingMethod, claims).SignedString(m.key)
	if err != nil {
		m.log.ErrorCtx(ctx, "failed to sign token", zap.Int64("user_id", userID), zap.Error(err))
		return "", err
	}
	m.log.DebugCtx(ctx, "access token issued", zap.Int64("user_id", userID), zap.Duration("ttl", m.cfg.AccessTTL))
	return signed, nil
}

// Verify checks signature, expiry, issuer and revocation
func (m *TokenManager) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMissing
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.signingMethod.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithLeeway(m.cfg.ClockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.cfg.Audience))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	}, opts...)
	if err != nil {
		m.log.DebugCtx(ctx, "token verification failed", zap.Error(err))
		return nil, mapParseError(err)
	}
	if !parsed.Valid || claims.TokenType != tokenTypeAccess {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}

	if m.revocations != nil && claims.ID != "" {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		switch {
		case err != nil:
			// the revocation list lives in the cache backend and degrades with it
			m.log.WarnCtx(ctx, "revocation check failed, token accepted", zap.Error(err))
		case revoked:
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// Revoke invalidates a verified token for the rest of its lifetime
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.revocations == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.TTL()
	if ttl <= 0 {
		return nil
	}
	if err := m.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		m.log.ErrorCtx(ctx, "failed to revoke token", zap.String("subject", claims.Subject), zap.Error(err))
		return err
	}
	m.log.InfoCtx(ctx, "token revoked", zap.String("subject", claims.Subject), zap.Duration("ttl", ttl))
	return nil
}

// TTL is the configured access token lifetime
func (m *TokenManager) TTL() time.Duration {
	return m.cfg.AccessTTL
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired.Wrap(err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature.Wrap(err)
	default:
		return ErrTokenInvalid.Wrap(err)
	}
}
