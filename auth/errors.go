package auth

import (
	"net/http"

	"github.com/KOMKZ/go-yogan-chat/errcode"
)

var (
	ErrPasswordTooShort         = errcode.Register(errcode.New(errcode.ModuleAuth, 1, "auth", "error.auth.password_too_short", "Password is too short", http.StatusBadRequest))
	ErrPasswordTooLong          = errcode.Register(errcode.New(errcode.ModuleAuth, 2, "auth", "error.auth.password_too_long", "Password is too long", http.StatusBadRequest))
	ErrPasswordRequireUppercase = errcode.Register(errcode.New(errcode.ModuleAuth, 3, "auth", "error.auth.password_uppercase", "Password must contain an uppercase letter", http.StatusBadRequest))
	ErrPasswordRequireLowercase = errcode.Register(errcode.New(errcode.ModuleAuth, 4, "auth", "error.auth.password_lowercase", "Password must contain a lowercase letter", http.StatusBadRequest))
	ErrPasswordRequireDigit     = errcode.Register(errcode.New(errcode.ModuleAuth, 5, "auth", "error.auth.password_digit", "Password must contain a digit", http.StatusBadRequest))
	ErrPasswordRequireSpecial   = errcode.Register(errcode.New(errcode.ModuleAuth, 6, "auth", "error.auth.password_special", "Password must contain a special character", http.StatusBadRequest))
	ErrPasswordInBlacklist      = errcode.Register(errcode.New(errcode.ModuleAuth, 7, "auth", "error.auth.password_blacklisted", "Password is too common", http.StatusBadRequest))

	// 400 rather than 401 on bad credentials, as clients of the login form expect
	ErrInvalidCredentials = errcode.Register(errcode.New(errcode.ModuleAuth, 10, "auth", "error.auth.invalid_credentials", "Incorrect username or password", http.StatusBadRequest))
	ErrAccountDisabled    = errcode.Register(errcode.New(errcode.ModuleAuth, 11, "auth", "error.auth.account_disabled", "Account is disabled", http.StatusForbidden))
	ErrTooManyAttempts    = errcode.Register(errcode.New(errcode.ModuleAuth, 12, "auth", "error.auth.too_many_attempts", "Too many login attempts, try again later", http.StatusTooManyRequests))
)
