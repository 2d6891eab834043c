package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CupSentinel/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Server wraps the Echo HTTP server.
type Server struct {
	echo *echo.Echo
	addr string
	log  zerolog.Logger
}

// NewServer creates the HTTP server with middleware, API routes and /metrics.
func NewServer(addr string, handler *Handler, rec *metrics.Recorder, log zerolog.Logger) *Server {
	log = log.With().Str("component", "http").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(Recover(log))
	e.Use(Metrics(rec))
	e.Use(RequestLogging(log))

	handler.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(rec.Handler()))

	return &Server{echo: e, addr: addr, log: log}
}

// Start serves in the background. Listen errors other than a clean shutdown are logged.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("http server error")
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
