// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     server
// Description: fasthttp server executing scripts from the script directory
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package server

import (
	"context"
	"errors"
	"expvar"
	"net"
	"time"

	sslog "github.com/frle10/smartscript/foundation/core/log"
	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/internal/scripts"
	"github.com/frle10/smartscript/internal/store"
	"github.com/frle10/smartscript/pkg/core/config"
	"github.com/frle10/smartscript/pkg/core/health"
	"github.com/frle10/smartscript/pkg/core/version"
	"github.com/tevino/abool/v2"
	"github.com/valyala/fasthttp"
)

// Reserved routes, never resolved as scripts
const (
	HealthPath = "/_health"
	StatsPath  = "/_stats"
)

// Request counters, see https://pkg.go.dev/expvar
var (
	requestsTotal     = expvar.NewInt("smartscriptRequests")
	okResponses       = expvar.NewInt("smartscriptOKResponses")
	notFoundResponses = expvar.NewInt("smartscriptNotFoundResponses")
	errorResponses    = expvar.NewInt("smartscriptErrorResponses")
	responseBodyBytes = expvar.NewInt("smartscriptResponseBodyBytes")
)

// Server is the SmartScript HTTP script server
type Server struct {
	config       config.ServerConfig
	engine       *smartscript.Engine
	loader       *scripts.Loader
	params       *store.Params
	health       *health.Registry
	logger       *sslog.Logger
	httpServer   *fasthttp.Server
	shuttingDown *abool.AtomicBool
}

// New creates a new script server. The loader owns the document cache;
// params holds the persistent parameters shared by all requests.
func New(cfg config.ServerConfig, engine *smartscript.Engine, loader *scripts.Loader, params *store.Params, logger *sslog.Logger) *Server {
	if logger == nil {
		logger = sslog.NewNop()
	}

	s := &Server{
		config:       cfg,
		engine:       engine,
		loader:       loader,
		params:       params,
		logger:       logger.WithField("component", "script-server"),
		shuttingDown: abool.New(),
	}

	s.health = health.NewRegistry("smartscript-server", version.Server)
	s.health.Register(health.DirectoryCheck("script_dir", cfg.ScriptDir))
	s.health.Register(health.CacheCheck("document_cache", loader.Cache()))
	s.health.RegisterFunc("http", func(ctx context.Context) health.CheckResult {
		if s.shuttingDown.IsSet() {
			return health.CheckResult{Status: health.StatusUnhealthy, Message: "shutting down"}
		}
		return health.CheckResult{Status: health.StatusHealthy, Message: "HTTP server is running"}
	})

	s.httpServer = &fasthttp.Server{
		Name:               "smartscript/" + version.Server,
		Handler:            s.Handler(),
		ReadTimeout:        cfg.ReadTimeout.Duration,
		WriteTimeout:       cfg.WriteTimeout.Duration,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}
	return s
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// ListenAndServe serves on addr until Shutdown is called
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener until Shutdown is called
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting script server", sslog.Fields{
		"address":    ln.Addr().String(),
		"script_dir": s.config.ScriptDir,
	})
	err := s.httpServer.Serve(ln)
	if err != nil && s.shuttingDown.IsSet() && errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server. Requests arriving meanwhile get 503.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.shuttingDown.SetToIf(false, true) {
		return nil
	}
	s.logger.Info("Stopping script server")

	if _, ok := ctx.Deadline(); !ok && s.config.ShutdownTimeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout.Duration)
		defer cancel()
	}
	return s.httpServer.ShutdownWithContext(ctx)
}

// Handler returns the request handler, usable without a listener in tests
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		requestsTotal.Add(1)

		switch string(ctx.Path()) {
		case HealthPath:
			s.handleHealth(ctx)
		case StatsPath:
			s.handleStats(ctx)
		default:
			s.handleScript(ctx)
		}

		updateCounters(ctx)
		s.logger.Info("HTTP request", sslog.Fields{
			"method":      string(ctx.Method()),
			"path":        string(ctx.Path()),
			"status":      ctx.Response.StatusCode(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
			"request_id":  requestID(ctx),
		})
	}
}

func updateCounters(ctx *fasthttp.RequestCtx) {
	resp := &ctx.Response
	switch code := resp.StatusCode(); {
	case code == fasthttp.StatusOK:
		okResponses.Add(1)
		responseBodyBytes.Add(int64(len(resp.Body())))
	case code == fasthttp.StatusNotFound:
		notFoundResponses.Add(1)
	case code >= 500:
		errorResponses.Add(1)
	}
}
