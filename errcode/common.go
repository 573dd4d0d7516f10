package errcode

import "net/http"

// Module codes
const (
	ModuleCommon  = 10
	ModuleUser    = 20
	ModuleMessage = 30
	ModuleAuth    = 40
	ModuleCache   = 70
)

// Errors shared by every module
var (
	ErrBadRequest      = Register(New(ModuleCommon, 1, "common", "error.common.bad_request", "Invalid request", http.StatusBadRequest))
	ErrValidation      = Register(New(ModuleCommon, 2, "common", "error.common.validation", "Validation failed", http.StatusBadRequest))
	ErrUnauthorized    = Register(New(ModuleCommon, 3, "common", "error.common.unauthorized", "Not authenticated", http.StatusUnauthorized))
	ErrForbidden       = Register(New(ModuleCommon, 4, "common", "error.common.forbidden", "Permission denied", http.StatusForbidden))
	ErrNotFound        = Register(New(ModuleCommon, 5, "common", "error.common.not_found", "Resource not found", http.StatusNotFound))
	ErrTooManyRequests = Register(New(ModuleCommon, 6, "common", "error.common.too_many_requests", "Too many requests", http.StatusTooManyRequests))
	ErrInternal        = Register(New(ModuleCommon, 9999, "common", "error.common.internal", "Internal server error", http.StatusInternalServerError))
)
