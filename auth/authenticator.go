package auth

import (
	"context"

	"github.com/KOMKZ/go-yogan-chat/logger"
	"go.uber.org/zap"
)

// Account is the credential view of a user
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Active       bool
}

// AccountLookup is implemented by the user service; (nil, nil) means no such user
type AccountLookup interface {
	AccountByUsername(ctx context.Context, username string) (*Account, error)
}

// Authenticator checks username/password logins
type Authenticator struct {
	passwords *PasswordService
	accounts  AccountLookup
	attempts  LoginAttemptStore
	cfg       LoginAttemptConfig
	log       *logger.CtxZapLogger
}

// NewAuthenticator; a nil attempts store or a disabled config turns lockout off
func NewAuthenticator(passwords *PasswordService, accounts AccountLookup, attempts LoginAttemptStore, cfg LoginAttemptConfig, log *logger.CtxZapLogger) *Authenticator {
	if !cfg.Enabled {
		attempts = nil
	}
	return &Authenticator{passwords: passwords, accounts: accounts, attempts: attempts, cfg: cfg, log: log}
}

// Login returns the account on success. Unknown users and wrong passwords
// give the same error and both count towards the lockout.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Account, error) {
	if a.locked(ctx, username) {
		a.log.WarnCtx(ctx, "login rejected, account locked", zap.String("username", username))
		return nil, ErrTooManyAttempts
	}

	account, err := a.accounts.AccountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil || !a.passwords.CheckPassword(password, account.PasswordHash) {
		a.fail(ctx, username)
		return nil, ErrInvalidCredentials
	}
	if !account.Active {
		return nil, ErrAccountDisabled
	}

	if a.attempts != nil {
		if err := a.attempts.Reset(ctx, username); err != nil {
			a.log.WarnCtx(ctx, "failed to reset login attempts", zap.String("username", username), zap.Error(err))
		}
	}
	a.log.InfoCtx(ctx, "login succeeded", zap.Int64("user_id", account.ID))
	return account, nil
}

func (a *Authenticator) locked(ctx context.Context, username string) bool {
	if a.attempts == nil {
		return false
	}
	n, err := a.attempts.Attempts(ctx, username)
	if err != nil {
		// an unavailable counter must not block logins
		a.log.WarnCtx(ctx, "failed to read login attempts", zap.String("username", username), zap.Error(err))
		return false
	}
	return n >= a.cfg.MaxAttempts
}

func (a *Authenticator) fail(ctx context.Context, username string) {
	a.log.WarnCtx(ctx, "login failed", zap.String("username", username))
	if a.attempts == nil {
		return
	}
	if err := a.attempts.Increment(ctx, username, a.cfg.LockoutDuration); err != nil {
		a.log.WarnCtx(ctx, "failed to record login attempt", zap.String("username", username), zap.Error(err))
	}
}
