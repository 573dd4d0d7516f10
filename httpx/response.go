// Package httpx provides the JSON envelope and error mapping of the chat API
package httpx

import (
	"errors"
	"net/http"

	"github.com/KOMKZ/go-yogan-chat/database"
	"github.com/KOMKZ/go-yogan-chat/errcode"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of every API response; code 0 means success
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

func OkJson(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// ErrorJson writes a LayeredError without logging it
func ErrorJson(c *gin.Context, err *errcode.LayeredError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), Response{
		Code: err.Code(),
		Msg:  err.Message(),
		Data: dataOrNil(err),
	})
}

func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ErrorJson(c, errcode.ErrNotFound.WithMsgf("Route not found: %s %s", c.Request.Method, c.Request.URL.Path))
	}
}

func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ErrorJson(c, errcode.ErrBadRequest.
			WithHTTPStatus(http.StatusMethodNotAllowed).
			WithMsgf("Method not allowed: %s %s", c.Request.Method, c.Request.URL.Path))
	}
}

// HandleError maps err to a response:
// LayeredError keeps its own status and code, database.ErrRecordNotFound is a 404,
// anything else is a 500 whose cause stays in the logs.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	cfg := getErrorLoggingConfig(c)
	ctx := c.Request.Context()

	le, ok := errcode.As(err)
	switch {
	case ok:
	case errors.Is(err, database.ErrRecordNotFound):
		le = errcode.ErrNotFound.Wrap(err)
	default:
		le = errcode.ErrInternal.Wrap(err)
	}

	if shouldLogError(cfg, le) {
		fields := []zap.Field{
			zap.Int("error_code", le.Code()),
			zap.String("error_msg", le.Message()),
			zap.String("path", c.FullPath()),
		}
		if cfg.FullErrorChain {
			fields = append(fields, zap.String("error_chain", le.String()), zap.Error(err))
		}
		switch {
		case le.HTTPStatus() >= http.StatusInternalServerError:
			cfg.Log.ErrorCtx(ctx, "request failed", fields...)
		case cfg.LogLevel == "warn":
			cfg.Log.WarnCtx(ctx, "request failed", fields...)
		case cfg.LogLevel == "info":
			cfg.Log.InfoCtx(ctx, "request failed", fields...)
		default:
			cfg.Log.ErrorCtx(ctx, "request failed", fields...)
		}
	}

	ErrorJson(c, le)
}

func shouldLogError(cfg errorLoggingConfigInternal, err *errcode.LayeredError) bool {
	if !cfg.Enable || cfg.Log == nil {
		return false
	}
	return !cfg.IgnoreStatusMap[err.HTTPStatus()]
}

func dataOrNil(err *errcode.LayeredError) any {
	if len(err.Data()) == 0 {
		return nil
	}
	return err.Data()
}
