package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestBuilder drives a gin engine without a listener
type RequestBuilder struct {
	method  string
	path    string
	body    any
	form    url.Values
	headers map[string]string
	query   url.Values
}

func NewRequest(method, path string) *RequestBuilder {
	return &RequestBuilder{
		method:  method,
		path:    path,
		headers: make(map[string]string),
		query:   make(url.Values),
	}
}

func (rb *RequestBuilder) WithJSON(body any) *RequestBuilder {
	rb.body = body
	return rb
}

// WithForm sends application/x-www-form-urlencoded
func (rb *RequestBuilder) WithForm(form url.Values) *RequestBuilder {
	rb.form = form
	return rb
}

func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

func (rb *RequestBuilder) WithBearer(token string) *RequestBuilder {
	return rb.WithHeader("Authorization", "Bearer "+token)
}

func (rb *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	rb.query.Set(key, value)
	return rb
}

func (rb *RequestBuilder) WithTraceID(traceID string) *RequestBuilder {
	return rb.WithHeader("X-Trace-ID", traceID)
}

func (rb *RequestBuilder) Do(engine *gin.Engine) *ResponseHelper {
	target := rb.path
	if len(rb.query) > 0 {
		target += "?" + rb.query.Encode()
	}

	var body io.Reader = http.NoBody
	contentType := ""
	switch {
	case rb.form != nil:
		body = strings.NewReader(rb.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case rb.body != nil:
		raw, _ := json.Marshal(rb.body)
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	req := httptest.NewRequest(rb.method, target, body)
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return &ResponseHelper{Recorder: w}
}

type ResponseHelper struct {
	Recorder *httptest.ResponseRecorder
}

func (rh *ResponseHelper) Status() int {
	return rh.Recorder.Code
}

func (rh *ResponseHelper) Body() string {
	return rh.Recorder.Body.String()
}

func (rh *ResponseHelper) JSON(v any) error {
	return json.Unmarshal(rh.Recorder.Body.Bytes(), v)
}

// Envelope decodes {code,msg,data} and unmarshals data into v when v is non-nil
func (rh *ResponseHelper) Envelope(v any) (code int, msg string, err error) {
	var env struct {
		Code int             `json:"code"`
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	if err = rh.JSON(&env); err != nil {
		return 0, "", err
	}
	if v != nil && len(env.Data) > 0 {
		err = json.Unmarshal(env.Data, v)
	}
	return env.Code, env.Msg, err
}

func (rh *ResponseHelper) Header(key string) string {
	return rh.Recorder.Header().Get(key)
}

func GET(path string) *RequestBuilder    { return NewRequest("GET", path) }
func POST(path string) *RequestBuilder   { return NewRequest("POST", path) }
func PUT(path string) *RequestBuilder    { return NewRequest("PUT", path) }
func DELETE(path string) *RequestBuilder { return NewRequest("DELETE", path) }
func PATCH(path string) *RequestBuilder  { return NewRequest("PATCH", path) }
