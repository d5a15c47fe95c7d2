// Package web serves the price dashboard: the HTML page, a JSON state API,
// health and readiness probes and the Prometheus endpoint.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/teaching-price-dashboard/pkg/dashboard"
	"github.com/Sternrassler/teaching-price-dashboard/pkg/metrics"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Controller is the dashboard state the server exposes.
type Controller interface {
	Trigger() (uuid.UUID, bool)
	Snapshot() dashboard.State
}

// ReadinessFunc reports whether backing services are reachable.
type ReadinessFunc func(ctx context.Context) error

// Server wraps the echo instance.
type Server struct {
	echo       *echo.Echo
	controller Controller
	ready      ReadinessFunc
	logger     zerolog.Logger
}

// NewServer builds the router. ready may be nil.
func NewServer(controller Controller, ready ReadinessFunc) (*Server, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		echo:       echo.New(),
		controller: controller,
		ready:      ready,
		logger:     log.With().Str("component", "web").Logger(),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = HTTPErrorHandler(s.logger)

	e.Use(RequestID())
	e.Use(RequestLogger(s.logger))
	e.Use(PanicRecovery(s.logger))
	e.Use(SecurityHeaders())

	e.GET("/", s.handleIndex)
	e.POST("/calculate", s.handleCalculateForm)
	e.GET("/api/state", s.handleState)
	e.POST("/api/calculate", s.handleCalculate)
	e.GET("/health", s.handleHealth)
	e.GET("/ready", s.handleReady)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return s, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.echo.Server.ReadHeaderTimeout = 10 * time.Second

	s.logger.Info().Str("addr", addr).Msg("Starting dashboard server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
