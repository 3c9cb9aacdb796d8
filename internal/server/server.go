package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"reconciler/internal/api"
	"reconciler/internal/config"
	"reconciler/internal/monitor"
	"reconciler/internal/service"
)

type Server struct {
	cfg        *config.Config
	deps       *Dependency
	httpServer *http.Server
	logger     *slog.Logger
}

func NewServer(cfg *config.Config, deps *Dependency) *Server {
	svc := service.NewService(deps.Backend, cfg.Docker.NetworkName, deps.Logger)

	router := api.NewRouter(svc)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		cfg:        cfg,
		deps:       deps,
		httpServer: httpServer,
		logger:     deps.Logger,
	}
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := monitor.StartMetricsServer(ctx, s.cfg.Metrics.Addr, s.logger); err != nil {
			s.logger.Error("Metrics server failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting API server", "addr", s.cfg.Server.Addr, "network", s.cfg.Docker.NetworkName)
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutdown signal received, draining...")
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.logger.Info("Server stopped gracefully")
	return nil
}
