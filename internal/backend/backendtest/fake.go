// Package backendtest provides an in-memory double for backend.Client so the
// reconciliation layers can be tested without a container engine.
package backendtest

import (
	"context"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/swarm"

	"reconciler/internal/backend"
)

var _ backend.Client = (*Fake)(nil)

// Fake holds the simulated engine state. Tests mutate the exported fields
// directly between calls; error fields, when set, are returned verbatim.
type Fake struct {
	mu sync.Mutex

	Containers []container.Summary
	Services   []swarm.Service
	Tasks      map[string][]swarm.Task // keyed by service ID

	ListContainersErr  error
	ListServicesErr    error
	ListTasksErr       error
	RemoveContainerErr error
	RemoveServiceErr   error

	RemovedContainers []string
	RemovedServices   []string
}

func New() *Fake {
	return &Fake{Tasks: make(map[string][]swarm.Task)}
}

func (f *Fake) ContainersByLabel(ctx context.Context, key, value string) ([]container.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListContainersErr != nil {
		return nil, f.ListContainersErr
	}
	var matched []container.Summary
	for _, c := range f.Containers {
		if c.Labels[key] == value {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (f *Fake) ServicesByLabel(ctx context.Context, key, value string) ([]swarm.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListServicesErr != nil {
		return nil, f.ListServicesErr
	}
	var matched []swarm.Service
	for _, s := range f.Services {
		if s.Spec.Labels[key] == value {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (f *Fake) RunningTasks(ctx context.Context, serviceID string) ([]swarm.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	var matched []swarm.Task
	for _, t := range f.Tasks[serviceID] {
		if t.DesiredState == swarm.TaskStateRunning {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (f *Fake) RemoveContainer(ctx context.Context, containerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RemoveContainerErr != nil {
		return f.RemoveContainerErr
	}
	for i, c := range f.Containers {
		if c.ID == containerID {
			f.Containers = append(f.Containers[:i], f.Containers[i+1:]...)
			break
		}
	}
	f.RemovedContainers = append(f.RemovedContainers, containerID)
	return nil
}

func (f *Fake) RemoveService(ctx context.Context, serviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.RemoveServiceErr != nil {
		return f.RemoveServiceErr
	}
	for i, s := range f.Services {
		if s.ID == serviceID {
			f.Services = append(f.Services[:i], f.Services[i+1:]...)
			delete(f.Tasks, serviceID)
			break
		}
	}
	f.RemovedServices = append(f.RemovedServices, serviceID)
	return nil
}

// MakeContainer builds a container summary carrying the identity label.
// networks maps network name to the endpoint's IP address.
func MakeContainer(id, name, labelKey, identity, state string, networks map[string]string) container.Summary {
	summary := container.Summary{
		ID:     id,
		Names:  []string{"/" + name},
		Labels: map[string]string{labelKey: identity},
		State:  container.ContainerState(state),
	}
	if len(networks) > 0 {
		endpoints := make(map[string]*network.EndpointSettings, len(networks))
		for netName, ip := range networks {
			endpoints[netName] = &network.EndpointSettings{IPAddress: ip}
		}
		summary.NetworkSettings = &container.NetworkSettingsSummary{Networks: endpoints}
	}
	return summary
}

// MakeService builds a swarm service carrying the identity label.
func MakeService(id, name, labelKey, identity string) swarm.Service {
	return swarm.Service{
		ID: id,
		Spec: swarm.ServiceSpec{
			Annotations: swarm.Annotations{
				Name:   name,
				Labels: map[string]string{labelKey: identity},
			},
		},
	}
}

// MakeTask builds a swarm task; addresses are attached in CIDR form the way
// the engine reports them.
func MakeTask(id, state, desiredState string, addresses ...string) swarm.Task {
	task := swarm.Task{
		ID:           id,
		Status:       swarm.TaskStatus{State: swarm.TaskState(state)},
		DesiredState: swarm.TaskState(desiredState),
	}
	if len(addresses) > 0 {
		task.NetworksAttachments = []swarm.NetworkAttachment{{Addresses: addresses}}
	}
	return task
}
