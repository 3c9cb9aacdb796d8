package workload

import (
	"context"
	"log/slog"

	"reconciler/internal/backend"
)

// Proxy is the polling/teardown contract over one workload's runtime object.
// A proxy never creates or schedules anything; it observes objects created by
// an external launcher and removes them on request. Implementations are
// single-writer: the caller must keep at most one QueryStatus or Terminate in
// flight per identity.
type Proxy interface {
	// LaunchEnv returns base augmented with the backend mode tag and the
	// selected network name, for the launcher to forward into the spawned
	// workload's environment.
	LaunchEnv(base []string) []string

	// QueryStatus locates the runtime object and returns its lifecycle phase
	// lowercased, or "" when nothing matches. The first poll observing the
	// running phase records the workload's address and host, exactly once.
	// iteration is a diagnostic correlation token; 0 suppresses the per-poll
	// log line.
	QueryStatus(ctx context.Context, iteration int) (string, error)

	// InitialStates returns the phases of a workload coming up, including
	// running.
	InitialStates() []string

	// ErrorStates returns the terminal/failure phases.
	ErrorStates() []string

	// Terminate idempotently removes the runtime object. An object that is
	// already gone counts as success; a removal failure is absorbed into
	// TerminationFailed. The error return carries lookup failures only.
	Terminate(ctx context.Context) (TerminationResult, error)

	// RuntimeName is the located object's name, "" until first located and
	// again after a successful termination.
	RuntimeName() string

	// AssignedIP and AssignedHost are write-once; "" until the workload is
	// first observed running.
	AssignedIP() string
	AssignedHost() string
}

// New returns the proxy variant for the given backend mode.
func New(mode Mode, client backend.Client, identity, network string, logger *slog.Logger) Proxy {
	if mode == ModeSwarm {
		return NewSwarmProxy(client, identity, network, logger)
	}
	return NewDockerProxy(client, identity, network, logger)
}
