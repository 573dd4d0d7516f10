// Package errcode provides layered error codes.
// Code format: MMBBBB (MM = module code, BBBB = business code).
package errcode

import (
	"errors"
	"fmt"
	"net/http"
)

// LayeredError is a coded error carrying an HTTP status, a message key and context data.
// All With* methods return a copy; predefined errors are never mutated.
type LayeredError struct {
	module     string
	code       int
	msgKey     string
	msg        string
	httpStatus int
	data       map[string]any
	cause      error
}

// New creates a layered error.
// moduleCode: 10-99, businessCode: 0001-9999, httpStatus defaults to 200.
func New(moduleCode, businessCode int, module, msgKey, msg string, httpStatus ...int) *LayeredError {
	status := http.StatusOK
	if len(httpStatus) > 0 {
		status = httpStatus[0]
	}
	return &LayeredError{
		module:     module,
		code:       moduleCode*10000 + businessCode,
		msgKey:     msgKey,
		msg:        msg,
		httpStatus: status,
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

func (e *LayeredError) Code() int            { return e.code }
func (e *LayeredError) Module() string       { return e.module }
func (e *LayeredError) MsgKey() string       { return e.msgKey }
func (e *LayeredError) Message() string      { return e.msg }
func (e *LayeredError) HTTPStatus() int      { return e.httpStatus }
func (e *LayeredError) Data() map[string]any { return e.data }
func (e *LayeredError) Cause() error         { return e.cause }
func (e *LayeredError) Unwrap() error        { return e.cause }

// Is matches by code, so errors.Is(err, user.ErrUserNotFound) holds for any wrapped copy
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	return ok && e.code == t.code
}

func (e *LayeredError) WithMsg(msg string) *LayeredError {
	c := e.clone()
	c.msg = msg
	return c
}

func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	return e.WithMsg(fmt.Sprintf(format, args...))
}

func (e *LayeredError) WithData(key string, value any) *LayeredError {
	c := e.clone()
	c.data[key] = value
	return c
}

func (e *LayeredError) WithFields(fields map[string]any) *LayeredError {
	c := e.clone()
	for k, v := range fields {
		c.data[k] = v
	}
	return c
}

func (e *LayeredError) WithHTTPStatus(status int) *LayeredError {
	c := e.clone()
	c.httpStatus = status
	return c
}

// Wrap attaches the original error; a nil cause returns e unchanged
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	c := e.clone()
	c.cause = cause
	return c
}

func (e *LayeredError) Wrapf(cause error, format string, args ...any) *LayeredError {
	c := e.WithMsgf(format, args...)
	c.cause = cause
	return c
}

func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}", e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}

func (e *LayeredError) clone() *LayeredError {
	c := *e
	c.data = make(map[string]any, len(e.data)+1)
	for k, v := range e.data {
		c.data[k] = v
	}
	return &c
}

// As finds the first LayeredError in err's chain
func As(err error) (*LayeredError, bool) {
	var le *LayeredError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}
