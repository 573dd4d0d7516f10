package httpx

import (
	"github.com/KOMKZ/go-yogan-chat/errcode"
	"github.com/gin-gonic/gin"
)

// Parse binds path (uri tags), query (form tags) and body into req.
// The body binding follows Content-Type, so JSON and form posts both work.
func Parse(c *gin.Context, req any) error {
	if len(c.Params) > 0 {
		if err := c.ShouldBindUri(req); err != nil {
			return errcode.ErrBadRequest.Wrap(err)
		}
	}
	if err := c.ShouldBindQuery(req); err != nil {
		return errcode.ErrBadRequest.Wrap(err)
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(req); err != nil {
			return errcode.ErrBadRequest.WithMsg("Malformed request body").Wrap(err)
		}
	}
	return nil
}
