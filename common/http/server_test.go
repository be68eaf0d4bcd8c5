package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *HttpServer {
	s := NewHttpServer(WithMode("test"), WithAddr("127.0.0.1:0"))
	s.Use(RequestIDMiddleware(), CorsMiddleware(), LoggerMiddleware())
	s.GET("/ok", func(c *Context) error {
		c.Success(map[string]string{"hello": c.GetQuery("name")})
		return nil
	})
	s.GET("/fail", func(c *Context) error {
		return errors.New("broken")
	})
	s.Handle(http.MethodGet, "/raw", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	return s
}

func TestEnvelope(t *testing.T) {
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok?name=ann", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Code int               `json:"code"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "ann", resp.Data["hello"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandlerErrorBecomes500(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "broken")
}

func TestRawHandlerAndPreflight(t *testing.T) {
	s := newTestServer()

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "http://example.test")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
