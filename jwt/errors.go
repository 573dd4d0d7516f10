package jwt

import (
	"net/http"

	"github.com/KOMKZ/go-yogan-chat/errcode"
)

var (
	ErrTokenMissing     = errcode.Register(errcode.New(errcode.ModuleAuth, 20, "jwt", "error.jwt.missing", "Not authenticated", http.StatusUnauthorized))
	ErrTokenInvalid     = errcode.Register(errcode.New(errcode.ModuleAuth, 21, "jwt", "error.jwt.invalid", "Invalid token", http.StatusUnauthorized))
	ErrTokenExpired     = errcode.Register(errcode.New(errcode.ModuleAuth, 22, "jwt", "error.jwt.expired", "Token expired", http.StatusUnauthorized))
	ErrInvalidSignature = errcode.Register(errcode.New(errcode.ModuleAuth, 23, "jwt", "error.jwt.signature", "Invalid token", http.StatusUnauthorized))
	ErrTokenRevoked     = errcode.Register(errcode.New(errcode.ModuleAuth, 24, "jwt", "error.jwt.revoked", "Token revoked", http.StatusUnauthorized))

	ErrSecretEmpty           = errcode.Register(errcode.New(errcode.ModuleAuth, 30, "jwt", "error.jwt.secret_empty", "jwt: secret is empty", http.StatusInternalServerError))
	ErrAlgorithmNotSupported = errcode.Register(errcode.New(errcode.ModuleAuth, 31, "jwt", "error.jwt.algorithm", "jwt: algorithm not supported", http.StatusInternalServerError))
)
