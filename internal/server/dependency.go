package server

import (
	"context"
	"log/slog"
	"os"

	"reconciler/internal/backend"
	"reconciler/internal/config"
)

// Dependency holds the process-wide infrastructure handles.
type Dependency struct {
	Backend *backend.Docker
	Logger  *slog.Logger
}

func InitDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependency, error) {
	// Backend API diagnostics are noisy at debug, so they get their own
	// level, overridable via DOCKER_LOG_LEVEL.
	backendLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Docker.LogLevel,
	})).With(slog.String("component", "docker"))

	dockerBackend, err := backend.NewDocker(ctx, backendLogger)
	if err != nil {
		return nil, err
	}

	return &Dependency{
		Backend: dockerBackend,
		Logger:  logger,
	}, nil
}

func (d *Dependency) Close() {
	if d.Backend != nil {
		d.Backend.Close()
	}
}
