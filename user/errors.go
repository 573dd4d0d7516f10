package user

import (
	"net/http"

	"github.com/KOMKZ/go-yogan-chat/errcode"
)

var (
	ErrUserNotFound  = errcode.Register(errcode.New(errcode.ModuleUser, 1, "user", "error.user.not_found", "User not found", http.StatusNotFound))
	ErrUserExists    = errcode.Register(errcode.New(errcode.ModuleUser, 2, "user", "error.user.exists", "Username or email already registered", http.StatusBadRequest))
	ErrNothingToSave = errcode.Register(errcode.New(errcode.ModuleUser, 3, "user", "error.user.nothing_to_update", "No fields to update", http.StatusBadRequest))
	ErrDatabase      = errcode.Register(errcode.New(errcode.ModuleUser, 9999, "user", "error.user.database", "Internal server error", http.StatusInternalServerError))
)
