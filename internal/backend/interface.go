package backend

import (
	"context"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/swarm"
)

// Client is the narrow slice of the container engine API the reconciler
// consumes. It is shared process-wide and must be safe for concurrent use;
// tests substitute fakes.
type Client interface {
	// ContainersByLabel lists running containers carrying label key=value.
	ContainersByLabel(ctx context.Context, key, value string) ([]container.Summary, error)

	// ServicesByLabel lists swarm services carrying label key=value.
	ServicesByLabel(ctx context.Context, key, value string) ([]swarm.Service, error)

	// RunningTasks lists the service's tasks whose desired-state is running,
	// excluding tasks already marked for shutdown.
	RunningTasks(ctx context.Context, serviceID string) ([]swarm.Task, error)

	// RemoveContainer force-removes a container.
	RemoveContainer(ctx context.Context, containerID string) error

	// RemoveService removes a service; its tasks go with it.
	RemoveService(ctx context.Context, serviceID string) error
}
