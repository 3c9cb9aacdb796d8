package workload

import (
	"context"
	"log/slog"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"

	"reconciler/internal/backend"
)

var _ Proxy = (*DockerProxy)(nil)

// DockerProxy reconciles a workload running as a plain container on a
// single-host engine.
type DockerProxy struct {
	client   backend.Client
	identity string
	network  string
	logger   *slog.Logger

	containerName string
	assignedIP    string
	assignedHost  string
}

func NewDockerProxy(client backend.Client, identity, network string, logger *slog.Logger) *DockerProxy {
	return &DockerProxy{
		client:   client,
		identity: identity,
		network:  network,
		logger:   logger.With(slog.String("workload_id", identity)),
	}
}

func (p *DockerProxy) LaunchEnv(base []string) []string {
	return append(base, EnvNetwork+"="+p.network, EnvMode+"="+string(ModeDocker))
}

func (p *DockerProxy) InitialStates() []string { return dockerInitialStates }
func (p *DockerProxy) ErrorStates() []string   { return dockerErrorStates }

func (p *DockerProxy) RuntimeName() string  { return p.containerName }
func (p *DockerProxy) AssignedIP() string   { return p.assignedIP }
func (p *DockerProxy) AssignedHost() string { return p.assignedHost }

// container fetches the unique container labeled with the identity. Zero
// matches is not an error; two or more is a labeling invariant breach.
func (p *DockerProxy) container(ctx context.Context) (*container.Summary, error) {
	containers, err := p.client.ContainersByLabel(ctx, LabelKey, p.identity)
	if err != nil {
		return nil, err
	}
	switch len(containers) {
	case 0:
		return nil, nil
	case 1:
		return &containers[0], nil
	default:
		return nil, &AmbiguousWorkloadError{Kind: "container", Identity: p.identity, Count: len(containers)}
	}
}

func (p *DockerProxy) QueryStatus(ctx context.Context, iteration int) (string, error) {
	status := ""
	ctr, err := p.container(ctx)
	if err != nil {
		return "", err
	}
	if ctr != nil {
		p.containerName = containerName(ctr)
		status = strings.ToLower(string(ctr.State))
		if status == running && p.assignedIP == "" {
			p.captureAddress(ctr)
		}
	}
	if iteration > 0 {
		p.logger.Debug("Waiting to connect to container",
			"iteration", iteration, "name", p.containerName, "status", status, "ip", p.assignedIP)
	}
	return status, nil
}

// captureAddress records the container's reachable address, preferring the
// configured network's endpoint and falling back to whatever attachment the
// engine lists first.
func (p *DockerProxy) captureAddress(ctr *container.Summary) {
	if ctr.NetworkSettings == nil || len(ctr.NetworkSettings.Networks) == 0 {
		return
	}
	if ep, ok := ctr.NetworkSettings.Networks[p.network]; ok && ep != nil {
		p.assignedIP = ep.IPAddress
		p.logger.Debug("Using address from configured network",
			"network", p.network, "ip", p.assignedIP)
	} else {
		for name, ep := range ctr.NetworkSettings.Networks {
			if ep == nil {
				continue
			}
			p.assignedIP = ep.IPAddress
			p.logger.Warn("Configured network not attached to container, falling back",
				"network", p.network, "fallback_network", name, "ip", p.assignedIP)
			break
		}
	}
	p.assignedHost = p.containerName
}

func (p *DockerProxy) Terminate(ctx context.Context) (TerminationResult, error) {
	ctr, err := p.container(ctx)
	if err != nil {
		return TerminationFailed, err
	}
	if ctr != nil {
		if err := p.client.RemoveContainer(ctx, ctr.ID); err != nil {
			p.logger.Debug("Container removal raised", "name", containerName(ctr), "error", err)
			// A not-found error means it vanished between lookup and
			// removal, which is the outcome we wanted anyway.
			if !errdefs.IsNotFound(err) {
				p.logger.Warn("Error occurred removing container, workload may be leaked",
					"name", containerName(ctr), "error", err)
				return TerminationFailed, nil
			}
		}
	}
	p.logger.Debug("Workload terminated", "name", p.containerName)
	p.containerName = ""
	return Terminated, nil
}

// containerName strips the engine's leading slash from the primary name.
func containerName(ctr *container.Summary) string {
	if len(ctr.Names) == 0 {
		return ctr.ID
	}
	return strings.TrimPrefix(ctr.Names[0], "/")
}
