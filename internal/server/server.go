package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"filebox/internal/config"
	"filebox/internal/metrics"
	"filebox/internal/storage"

	"go.uber.org/zap"
)

// Server is the file-storage façade HTTP server
type Server struct {
	cfg      config.ServerConfig
	handlers *Handlers
	metrics  *metrics.Collector
	logger   *zap.Logger
}

// New creates a façade server over the given store client
func New(cfg config.ServerConfig, store storage.Client, collector *metrics.Collector, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		handlers: NewHandlers(store, cfg.URLTTL, logger),
		metrics:  collector,
		logger:   logger,
	}
}

// Routes builds the request mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/files", s.handlers.HandleFiles)
	mux.HandleFunc("/api/upload-url", s.handlers.HandleUploadURL)
	mux.HandleFunc("/api/download-url", s.handlers.HandleDownloadURL)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("Server listening",
		zap.String("addr", s.cfg.Listen),
		zap.Duration("url_ttl", s.cfg.URLTTL),
	)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}
