package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elazarl/goproxy"
	"github.com/google/uuid"

	"devrelay/addons"
	"devrelay/config"
	"devrelay/logger"
)

// Server is the intercepting transport: it terminates TLS with the local
// CA, decodes each request/response pair and hands it to the addon
// pipeline before the response goes back to the client.
type Server struct {
	cfg      *config.Config
	pipeline *addons.Pipeline
}

func NewServer(cfg *config.Config, pipeline *addons.Pipeline) *Server {
	return &Server{cfg: cfg, pipeline: pipeline}
}

// Run starts the proxy and blocks until ctx is cancelled or the listener
// fails. Cancellation drains in-flight exchanges before returning nil.
func (s *Server) Run(ctx context.Context) error {
	ca, err := EnsureCA(s.cfg.CertDir)
	if err != nil {
		return fmt.Errorf("could not load CA certificate/key: %w", err)
	}
	goproxy.GoproxyCa = *ca

	proxy := goproxy.NewProxyHttpServer()
	proxy.Logger = log.New(io.Discard, "", 0)

	proxy.OnRequest().HandleConnect(goproxy.FuncHttpsHandler(func(host string, ctx *goproxy.ProxyCtx) (*goproxy.ConnectAction, string) {
		logger.ProxyDebug("CONNECT %s (session %d)", host, ctx.Session)
		return &goproxy.ConnectAction{Action: goproxy.ConnectMitm, TLSConfig: goproxy.TLSConfigFromCA(&goproxy.GoproxyCa)}, host
	}))

	proxy.OnResponse().DoFunc(func(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
		return s.handleResponse(resp, ctx)
	})

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	srv := &http.Server{Addr: addr, Handler: proxy}

	errCh := make(chan error, 1)
	go func() {
		logger.ProxyInfo("DevRelay proxy listening on %s (certdir: %s)", addr, s.cfg.CertDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.ProxyInfo("Shutting down proxy on %s", addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("proxy shutdown: %w", err)
		}
		return nil
	}
}

// handleResponse bridges one goproxy response into the addon pipeline
// and writes the mutations back onto the wire response.
func (s *Server) handleResponse(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
	method := strings.ToUpper(ctx.Req.Method)
	id := uuid.NewString()

	if resp == nil {
		logger.ProxyDebug("[%s] %s %s: no upstream response", id, method, ctx.Req.URL)
		s.pipeline.Handle(addons.NewExchange(method, nil))
		return resp
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.ProxyError("[%s] %s %s: error reading response body: %v", id, method, ctx.Req.URL, err)
	}
	resp.Body.Close()

	ex := addons.NewExchange(method, &addons.Response{
		StatusCode: resp.StatusCode,
		Reason:     strings.TrimPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)),
		Header:     resp.Header,
		Body:       body,
	})

	s.pipeline.Handle(ex)

	resp.StatusCode = ex.Response.StatusCode
	resp.Status = fmt.Sprintf("%d %s", ex.Response.StatusCode, ex.Response.Reason)
	resp.Body = io.NopCloser(bytes.NewReader(ex.Response.Body))
	resp.ContentLength = int64(len(ex.Response.Body))
	if resp.Header.Get("Content-Length") != "" {
		resp.Header.Set("Content-Length", strconv.Itoa(len(ex.Response.Body)))
	}

	logger.ProxyDebug("[%s] %s %s -> %s", id, method, ctx.Req.URL, resp.Status)
	return resp
}
