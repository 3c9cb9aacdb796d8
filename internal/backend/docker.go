package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/swarm"
	"github.com/docker/docker/client"
)

var _ Client = (*Docker)(nil)

// Docker implements Client over the engine's remote API. One instance is
// created at process start and injected into every workload proxy.
type Docker struct {
	api    *client.Client
	logger *slog.Logger
}

// NewDocker builds the client from the standard environment (DOCKER_HOST etc.)
// and verifies the daemon is reachable.
func NewDocker(ctx context.Context, logger *slog.Logger) (*Docker, error) {
	api, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	if _, err := api.Ping(ctx); err != nil {
		api.Close()
		return nil, fmt.Errorf("docker ping: %w", err)
	}
	return &Docker{api: api, logger: logger}, nil
}

func (d *Docker) ContainersByLabel(ctx context.Context, key, value string) ([]container.Summary, error) {
	f := filters.NewArgs(filters.Arg("label", key+"="+value))
	containers, err := d.api.ContainerList(ctx, container.ListOptions{Filters: f})
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	d.logger.Debug("Listed containers by label", "label", key+"="+value, "count", len(containers))
	return containers, nil
}

func (d *Docker) ServicesByLabel(ctx context.Context, key, value string) ([]swarm.Service, error) {
	f := filters.NewArgs(filters.Arg("label", key+"="+value))
	services, err := d.api.ServiceList(ctx, types.ServiceListOptions{Filters: f})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	d.logger.Debug("Listed services by label", "label", key+"="+value, "count", len(services))
	return services, nil
}

func (d *Docker) RunningTasks(ctx context.Context, serviceID string) ([]swarm.Task, error) {
	f := filters.NewArgs(
		filters.Arg("service", serviceID),
		filters.Arg("desired-state", "running"),
	)
	tasks, err := d.api.TaskList(ctx, types.TaskListOptions{Filters: f})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	d.logger.Debug("Listed running tasks", "service_id", serviceID, "count", len(tasks))
	return tasks, nil
}

func (d *Docker) RemoveContainer(ctx context.Context, containerID string) error {
	return d.api.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
}

func (d *Docker) RemoveService(ctx context.Context, serviceID string) error {
	return d.api.ServiceRemove(ctx, serviceID)
}

// Close releases the underlying API connection.
func (d *Docker) Close() error {
	return d.api.Close()
}
