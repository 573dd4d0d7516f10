package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KOMKZ/go-yogan-chat/errcode"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
)

type greetRequest struct {
	ID   int64  `uri:"id"`
	Name string `json:"name" form:"name"`
	Loud bool   `form:"loud"`
}

func (r *greetRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
	)
}

type greetResponse struct {
	Greeting string `json:"greeting"`
}

func greet(c *gin.Context, req *greetRequest) (*greetResponse, error) {
	if req.Name == "nobody" {
		return nil, errWidgetMissing
	}
	g := "Hello, " + req.Name
	if req.Loud {
		g = strings.ToUpper(g)
	}
	return &greetResponse{Greeting: g}, nil
}

func serveGreet(method, target, contentType, body string) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.POST("/greet/:id", Wrap(greet))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	engine.ServeHTTP(w, req)
	return w
}

func TestWrap_JSONBody(t *testing.T) {
	w := serveGreet(http.MethodPost, "/greet/1?loud=true", "application/json", `{"name":"World"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"greeting": "HELLO, WORLD"}, decode(t, w).Data)
}

func TestWrap_FormBody(t *testing.T) {
	w := serveGreet(http.MethodPost, "/greet/1", "application/x-www-form-urlencoded", "name=Form")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"greeting": "Hello, Form"}, decode(t, w).Data)
}

func TestWrap_MalformedBody(t *testing.T) {
	w := serveGreet(http.MethodPost, "/greet/1", "application/json", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errcode.ErrBadRequest.Code(), decode(t, w).Code)
}

func TestWrap_BadPathParam(t *testing.T) {
	w := serveGreet(http.MethodPost, "/greet/abc", "application/json", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWrap_ValidationError(t *testing.T) {
	w := serveGreet(http.MethodPost, "/greet/1", "application/json", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, errcode.ErrValidation.Code(), resp.Code)
	assert.Contains(t, resp.Data, "fields")
}

func TestWrap_HandlerError(t *testing.T) {
	w := serveGreet(http.MethodPost, "/greet/1", "application/json", `{"name":"nobody"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
