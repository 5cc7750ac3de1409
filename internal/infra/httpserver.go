package infra

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer runs the public API and routes net/http's own error output into
// the structured log.
type HTTPServer struct {
	server *http.Server
	logger zerolog.Logger
}

func NewHTTPServer(cfg *Config, handler http.Handler, logger zerolog.Logger) *HTTPServer {
	serverLog := logger.With().Str("component", "http").Logger()
	return &HTTPServer{
		logger: serverLog,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.HTTPReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.HTTPWriteTimeout,
			IdleTimeout:       cfg.HTTPIdleTimeout,
			ErrorLog:          log.New(serverLog, "", 0),
		},
	}
}

// Addr reports the listen address.
func (s *HTTPServer) Addr() string { return s.server.Addr }

// Start blocks until the server stops. A stop caused by Shutdown is not an error.
func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, including long-running generation calls,
// until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("draining connections")
	return s.server.Shutdown(ctx)
}
