package httpx

import (
	"github.com/KOMKZ/go-yogan-chat/validator"
	"github.com/gin-gonic/gin"
)

// HandlerFunc is a typed handler; Req is bound by Parse
type HandlerFunc[Req any, Resp any] func(c *gin.Context, req *Req) (Resp, error)

// Wrap parses and validates Req, calls handler and writes the envelope
func Wrap[Req any, Resp any](handler HandlerFunc[Req, Resp]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Req
		if err := Parse(c, &req); err != nil {
			HandleError(c, err)
			return
		}

		if v, ok := any(&req).(validator.Validatable); ok {
			if err := validator.ValidateRequest(v); err != nil {
				HandleError(c, err)
				return
			}
		}

		resp, err := handler(c, &req)
		if err != nil {
			HandleError(c, err)
			return
		}
		OkJson(c, resp)
	}
}
