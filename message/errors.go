package message

import (
	"net/http"

	"github.com/KOMKZ/go-yogan-chat/errcode"
)

var (
	ErrMessageNotFound   = errcode.Register(errcode.New(errcode.ModuleMessage, 1, "message", "error.message.not_found", "Message not found", http.StatusNotFound))
	ErrRecipientNotFound = errcode.Register(errcode.New(errcode.ModuleMessage, 2, "message", "error.message.recipient_not_found", "Recipient not found", http.StatusNotFound))
	ErrSelfMessage       = errcode.Register(errcode.New(errcode.ModuleMessage, 3, "message", "error.message.self", "Cannot send message to yourself", http.StatusBadRequest))
	ErrContentEmpty      = errcode.Register(errcode.New(errcode.ModuleMessage, 4, "message", "error.message.content_empty", "Message content cannot be empty", http.StatusBadRequest))
	ErrContentTooLong    = errcode.Register(errcode.New(errcode.ModuleMessage, 5, "message", "error.message.content_too_long", "Message content is too long", http.StatusBadRequest))
	ErrDatabase          = errcode.Register(errcode.New(errcode.ModuleMessage, 9999, "message", "error.message.database", "Internal server error", http.StatusInternalServerError))
)
