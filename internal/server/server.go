// Package server exposes the spreadsheet upload endpoint over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/baditaflorin/l"
	"github.com/ukaji3/weektable-go/pkg/blob"
	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/valyala/fasthttp"
)

// Default configuration
const (
	DefaultPort          = 4000
	DefaultReadTimeout   = 30 * time.Second
	DefaultWriteTimeout  = 30 * time.Second
	DefaultParseTimeout  = 30 * time.Second
	DefaultMaxUploadSize = 20 * 1024 * 1024 // 20MB
)

// HealthMessage is the body served on GET /.
const HealthMessage = "Excel upload API running"

// Config configures the HTTP server.
type Config struct {
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ParseTimeout  time.Duration
	MaxUploadSize int
	// KeepUploads leaves uploaded files in the store after parsing.
	KeepUploads bool
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Port:          DefaultPort,
		ReadTimeout:   DefaultReadTimeout,
		WriteTimeout:  DefaultWriteTimeout,
		ParseTimeout:  DefaultParseTimeout,
		MaxUploadSize: DefaultMaxUploadSize,
	}
}

// Server parses uploaded workbooks into JSON rows.
type Server struct {
	cfg     Config
	store   blob.Store
	logger  l.Logger
	metrics *metrics
	srv     *fasthttp.Server
}

// New creates a server that keeps uploads in store while they are parsed.
func New(cfg Config, store blob.Store, logger l.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		metrics: newMetrics(),
	}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "weektable",
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		MaxRequestBodySize: cfg.MaxUploadSize,
		TCPKeepalive:       true,
		Logger:             nil, // we'll handle logging ourselves
	}
	return s
}

// Handler returns the routed request handler wrapped with CORS.
func (s *Server) Handler() fasthttp.RequestHandler {
	metricsHandler := s.metrics.handler()
	return withCORS(func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/":
			handleHealth(ctx)
		case "/upload":
			s.handleUpload(ctx)
		case "/metrics":
			metricsHandler(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			writeJSONError(ctx, "Not found")
		}
	})
}

// ListenAndServe serves on the configured port until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp4", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled. It returns nil
// after a shutdown triggered by ctx and the accept error otherwise; in both
// cases the shutdown watcher has exited by the time it returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down server...")
			if err := s.srv.Shutdown(); err != nil {
				s.logger.Error("Error during server shutdown", "error", err)
			}
		case <-done:
		}
	}()

	s.logger.Info("Server listening", "address", ln.Addr().String())
	err := s.srv.Serve(ln)
	close(done)
	<-stopped
	if ctx.Err() != nil {
		s.logger.Info("Server stopped")
		return nil
	}
	return err
}

func handleHealth(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() && !ctx.IsHead() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(HealthMessage)
}

// withCORS allows any origin and answers preflight requests.
func withCORS(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		if ctx.IsOptions() {
			ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
			if h := ctx.Request.Header.Peek("Access-Control-Request-Headers"); len(h) > 0 {
				ctx.Response.Header.SetBytesV("Access-Control-Allow-Headers", h)
				ctx.Response.Header.Set("Vary", "Access-Control-Request-Headers")
			}
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}
		next(ctx)
	}
}

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, "Internal server error")
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(models.ErrorResponse{Error: message})
	if err != nil {
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(response)
}
