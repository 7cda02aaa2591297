package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pkg.jsn.cam/gentexts/internal/backend"
	"pkg.jsn.cam/gentexts/pkg/gentexts/httpx"
)

// shutdownTimeout bounds how long in-flight requests may take after Run's
// context is cancelled
const shutdownTimeout = 5 * time.Second

// Server exposes a Backend over HTTP
type Server struct {
	backend *backend.Backend
	logger  *zap.Logger
	mux     *http.ServeMux
}

// New creates a server for b
func New(b *backend.Backend, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		backend: b,
		logger:  logger.Named("server"),
		mux:     http.NewServeMux(),
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Texts
	s.mux.HandleFunc("GET /api/texts", httpx.Wrap(s.handleTextList))
	s.mux.HandleFunc("GET /api/texts/random", httpx.Wrap(s.handleRandomText))
	s.mux.HandleFunc("POST /api/texts/refresh", httpx.Wrap(s.handleRefresh))

	// History
	s.mux.HandleFunc("GET /api/history", httpx.Wrap(s.handleHistory))
	s.mux.HandleFunc("GET /api/history/{id}", httpx.Wrap(s.handleHistoryRecord))

	// Clock
	s.mux.HandleFunc("GET /api/time", httpx.Wrap(s.handleTime))
	s.mux.HandleFunc("GET /api/elapsed", httpx.Wrap(s.handleElapsed))

	// Status
	s.mux.HandleFunc("GET /api/stats", httpx.Wrap(s.handleStats))
	s.mux.HandleFunc("GET /api/version", httpx.Wrap(s.handleVersion))
	s.mux.HandleFunc("GET /health", httpx.Wrap(s.handleHealth))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("took", time.Since(start)))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
