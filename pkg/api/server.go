// Package api is the HTTP surface of the streaming-claim pipeline (spec.md
// §6): Echo v5 route wiring, request binding, and central error mapping.
// Grounded on teacher's pkg/api/server.go for the server lifecycle shape.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/NefariousNiru/papertrail-go/pkg/config"
	"github.com/NefariousNiru/papertrail-go/pkg/llm"
	"github.com/NefariousNiru/papertrail-go/pkg/services"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server
	cfg        *config.Config
	paper      *services.PaperService
	llmClient  *llm.Client
}

// NewServer creates a new API server with Echo v5, wiring CORS, rate
// limiting, and body-size limits from cfg (spec.md §6 configuration).
func NewServer(cfg *config.Config, paper *services.PaperService, llmClient *llm.Client) *Server {
	e := echo.New()

	s := &Server{echo: e, cfg: cfg, paper: paper, llmClient: llmClient}

	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(s.cfg.MaxFileBytes() + 1024)) // headroom over the raw PDF for multipart overhead
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.cfg.AllowedOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(s.cfg.RateLimitTimes) / float64(s.cfg.RateLimitSeconds)),
			Burst:     s.cfg.RateLimitTimes,
			ExpiresIn: time.Duration(s.cfg.RateLimitSeconds) * time.Second,
		}),
	}))

	s.echo.GET("/healthz", s.healthzHandler)
	s.echo.GET("/metrics", func(c *echo.Context) error {
		promhttp.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})

	v1 := s.echo.Group("/api/v1")
	v1.POST("/validate-api-key", s.validateAPIKeyHandler)
	v1.POST("/upload-paper", s.uploadPaperHandler)
	v1.POST("/stream-claim", s.streamClaimHandler)
	v1.POST("/verify-claim", s.verifyClaimHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
