package workload

import (
	"context"
	"log/slog"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/swarm"

	"reconciler/internal/backend"
)

var _ Proxy = (*SwarmProxy)(nil)

// SwarmProxy reconciles a workload running as a swarm service. The lifecycle
// phase comes from the service's current task, not the service itself, so
// "service exists" is never mistaken for "task is healthy".
type SwarmProxy struct {
	client   backend.Client
	identity string
	network  string
	logger   *slog.Logger

	serviceName  string
	assignedIP   string
	assignedHost string
}

func NewSwarmProxy(client backend.Client, identity, network string, logger *slog.Logger) *SwarmProxy {
	return &SwarmProxy{
		client:   client,
		identity: identity,
		network:  network,
		logger:   logger.With(slog.String("workload_id", identity)),
	}
}

func (p *SwarmProxy) LaunchEnv(base []string) []string {
	return append(base, EnvNetwork+"="+p.network, EnvMode+"="+string(ModeSwarm))
}

func (p *SwarmProxy) InitialStates() []string { return swarmInitialStates }
func (p *SwarmProxy) ErrorStates() []string   { return swarmErrorStates }

func (p *SwarmProxy) RuntimeName() string  { return p.serviceName }
func (p *SwarmProxy) AssignedIP() string   { return p.assignedIP }
func (p *SwarmProxy) AssignedHost() string { return p.assignedHost }

// service fetches the unique service labeled with the identity, recording its
// name. The same 0/1/many rule as for containers applies.
func (p *SwarmProxy) service(ctx context.Context) (*swarm.Service, error) {
	services, err := p.client.ServicesByLabel(ctx, LabelKey, p.identity)
	if err != nil {
		return nil, err
	}
	switch len(services) {
	case 0:
		return nil, nil
	case 1:
		p.serviceName = services[0].Spec.Name
		return &services[0], nil
	default:
		return nil, &AmbiguousWorkloadError{Kind: "service", Identity: p.identity, Count: len(services)}
	}
}

// task fetches the service's single desired-state=running task. Asking only
// for running desired-state excludes tasks already marked for shutdown, so a
// service mid-update still resolves to exactly one candidate.
func (p *SwarmProxy) task(ctx context.Context) (*swarm.Task, error) {
	svc, err := p.service(ctx)
	if err != nil || svc == nil {
		return nil, err
	}
	tasks, err := p.client.RunningTasks(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	switch len(tasks) {
	case 0:
		return nil, nil
	case 1:
		return &tasks[0], nil
	default:
		return nil, &AmbiguousWorkloadError{
			Kind:     "task",
			Identity: p.identity,
			Count:    len(tasks),
			Service:  svc.Spec.Name,
		}
	}
}

func (p *SwarmProxy) QueryStatus(ctx context.Context, iteration int) (string, error) {
	state := ""
	taskID := ""
	task, err := p.task(ctx)
	if err != nil {
		return "", err
	}
	if task != nil {
		taskID = task.ID
		state = strings.ToLower(string(task.Status.State))
		if state == running && p.assignedIP == "" {
			p.captureAddress(task)
		}
	}
	if iteration > 0 {
		p.logger.Debug("Waiting to connect to service task",
			"iteration", iteration, "name", p.serviceName, "status", state,
			"ip", p.assignedIP, "task_id", taskID)
	}
	return state, nil
}

// captureAddress takes the first address of the task's first network
// attachment, which the engine reports in CIDR form, and keeps the IP part.
func (p *SwarmProxy) captureAddress(task *swarm.Task) {
	if len(task.NetworksAttachments) == 0 || len(task.NetworksAttachments[0].Addresses) == 0 {
		return
	}
	addr := task.NetworksAttachments[0].Addresses[0]
	ip, _, _ := strings.Cut(addr, "/")
	p.assignedIP = ip
	p.assignedHost = p.serviceName
}

// Terminate removes the service; the engine removes its tasks transitively.
func (p *SwarmProxy) Terminate(ctx context.Context) (TerminationResult, error) {
	svc, err := p.service(ctx)
	if err != nil {
		return TerminationFailed, err
	}
	if svc != nil {
		if err := p.client.RemoveService(ctx, svc.ID); err != nil {
			p.logger.Debug("Service removal raised", "name", svc.Spec.Name, "error", err)
			if !errdefs.IsNotFound(err) {
				p.logger.Warn("Error occurred removing service, workload may be leaked",
					"name", svc.Spec.Name, "error", err)
				return TerminationFailed, nil
			}
		}
	}
	p.logger.Debug("Workload terminated", "name", p.serviceName)
	p.serviceName = ""
	return Terminated, nil
}
