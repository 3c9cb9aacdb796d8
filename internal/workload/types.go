package workload

// LabelKey is the container/service label whose value carries the workload
// identity. At most one live runtime object may carry a given value.
const LabelKey = "workload_id"

// Environment variables injected at launch time so the launcher can convey
// the backend selection into the spawned workload.
const (
	EnvMode    = "WORKLOAD_DOCKER_MODE"
	EnvNetwork = "WORKLOAD_DOCKER_NETWORK"
)

// Mode selects the backend variant a proxy binds to.
type Mode string

const (
	ModeDocker Mode = "docker"
	ModeSwarm  Mode = "swarm"
)

// ParseMode maps a mode tag to a Mode, defaulting to the single-host engine.
func ParseMode(s string) Mode {
	if s == string(ModeSwarm) {
		return ModeSwarm
	}
	return ModeDocker
}

// TerminationResult is the normalized outcome of a teardown attempt.
type TerminationResult string

const (
	// Terminated covers both actual removal and the object already being gone.
	Terminated TerminationResult = "terminated"
	// TerminationFailed means removal failed and the workload may be leaked.
	TerminationFailed TerminationResult = "failed"
)

const running = "running"

// Lifecycle phase tables per backend, all lowercase. Initial includes the
// running phase; the two sets are disjoint. A phase in neither set is still
// indeterminate and left to the caller.
var (
	dockerInitialStates = []string{"created", "running"}
	dockerErrorStates   = []string{"restarting", "removing", "paused", "exited", "dead"}

	swarmInitialStates = []string{"preparing", "starting", "running"}
	swarmErrorStates   = []string{"failed", "rejected", "complete", "shutdown", "orphaned", "remove"}
)
