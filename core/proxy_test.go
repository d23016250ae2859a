package core

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/elazarl/goproxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devrelay/addons"
	"devrelay/config"
)

func testServer() *Server {
	return NewServer(&config.Config{Host: "127.0.0.1", Port: 8080}, addons.NewPipeline(nil))
}

func wireResponse(t *testing.T, method, url string, status int, statusLine, body string, headers map[string]string) (*http.Response, *goproxy.ProxyCtx) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)

	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	resp := &http.Response{
		StatusCode:    status,
		Status:        statusLine,
		Header:        h,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
	return resp, &goproxy.ProxyCtx{Req: req}
}

func TestHandleResponseWritesPreflightRewriteToWire(t *testing.T) {
	resp, ctx := wireResponse(t, http.MethodOptions, "http://example.com/hook",
		http.StatusMethodNotAllowed, "405 Method Not Allowed", "Method Not Allowed",
		map[string]string{"Content-Length": "18"})

	out := testServer().handleResponse(resp, ctx)

	require.NotNil(t, out)
	assert.Equal(t, http.StatusNoContent, out.StatusCode)
	assert.Equal(t, "204 No Content", out.Status)

	body, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
	assert.Equal(t, int64(0), out.ContentLength)
	assert.Equal(t, "0", out.Header.Get("Content-Length"))

	assert.Equal(t, "*", out.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS, HEAD", out.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "*", out.Header.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", out.Header.Get("Access-Control-Max-Age"))
	assert.Equal(t, "*", out.Header.Get("Access-Control-Expose-Headers"))
}

func TestHandleResponseStripsSecurityHeaders(t *testing.T) {
	resp, ctx := wireResponse(t, http.MethodGet, "http://example.com/page",
		http.StatusOK, "200 OK", "<html></html>",
		map[string]string{
			"Content-Security-Policy":    "default-src 'self'",
			"Cross-Origin-Opener-Policy": "same-origin",
			"Content-Type":               "text/html",
		})

	out := testServer().handleResponse(resp, ctx)

	assert.Empty(t, out.Header.Get("Content-Security-Policy"))
	assert.Empty(t, out.Header.Get("Cross-Origin-Opener-Policy"))
	assert.Equal(t, "text/html", out.Header.Get("Content-Type"))
	assert.Equal(t, "200 OK", out.Status)

	body, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body), "body must survive untouched")
}

func TestHandleResponseNilUpstream(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://example.com/", nil)
	require.NoError(t, err)

	out := testServer().handleResponse(nil, &goproxy.ProxyCtx{Req: req})
	assert.Nil(t, out)
}
