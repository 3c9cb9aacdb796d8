package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"reconciler/internal/backend"
	"reconciler/internal/monitor"
	"reconciler/internal/workload"
)

var (
	ErrNotRegistered     = errors.New("workload not registered")
	ErrAlreadyRegistered = errors.New("workload already registered")
)

// WorkloadStatus is a snapshot of a proxy's observed state.
type WorkloadStatus struct {
	Identity     string
	Mode         workload.Mode
	Phase        string
	RuntimeName  string
	AssignedIP   string
	AssignedHost string
	Polls        int
}

// entry serializes access to one proxy. Proxy state is single-writer; the
// mutex enforces at most one in-flight query or termination per identity.
type entry struct {
	mu    sync.Mutex
	proxy workload.Proxy
	mode  workload.Mode
	polls int
}

// Service is the per-identity registry of workload proxies over one shared
// backend client. It owns the polling bookkeeping the proxies themselves stay
// out of.
type Service struct {
	client  backend.Client
	network string
	logger  *slog.Logger

	mu        sync.RWMutex
	workloads map[string]*entry
}

func NewService(client backend.Client, network string, logger *slog.Logger) *Service {
	return &Service{
		client:    client,
		network:   network,
		logger:    logger,
		workloads: make(map[string]*entry),
	}
}

// Register creates a proxy for an identity whose runtime object an external
// launcher creates. The identity must not already be tracked.
func (s *Service) Register(identity string, mode workload.Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workloads[identity]; ok {
		return ErrAlreadyRegistered
	}
	s.workloads[identity] = &entry{
		proxy: workload.New(mode, s.client, identity, s.network, s.logger),
		mode:  mode,
	}
	monitor.WorkloadsRegistered.Inc()
	s.logger.Info("Workload registered", "workload_id", identity, "mode", string(mode))
	return nil
}

func (s *Service) entry(identity string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.workloads[identity]
	if !ok {
		return nil, ErrNotRegistered
	}
	return e, nil
}

// Status performs one lookup/classify/extract round trip. quiet suppresses
// the per-poll diagnostic, for callers doing rapid initial polls.
func (s *Service) Status(ctx context.Context, identity string, quiet bool) (*WorkloadStatus, error) {
	e, err := s.entry(identity)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.polls++
	iteration := e.polls
	if quiet {
		iteration = 0
	}

	hadAddress := e.proxy.AssignedIP() != ""

	start := time.Now()
	phase, err := e.proxy.QueryStatus(ctx, iteration)
	monitor.StatusQueryLatency.Observe(time.Since(start).Seconds())
	monitor.StatusQueries.WithLabelValues(string(e.mode)).Inc()
	if err != nil {
		var ambiguous *workload.AmbiguousWorkloadError
		if errors.As(err, &ambiguous) {
			monitor.AmbiguousLookups.Inc()
		}
		return nil, err
	}

	if !hadAddress && e.proxy.AssignedIP() != "" {
		monitor.AddressesAssigned.Inc()
		s.logger.Info("Workload address assigned",
			"workload_id", identity, "ip", e.proxy.AssignedIP(), "host", e.proxy.AssignedHost())
	}

	return snapshotLocked(identity, e, phase), nil
}

// Phases exposes the static classification tables for the caller's own
// phase-comparison loop.
func (s *Service) Phases(identity string) (initial, errorStates []string, err error) {
	e, err := s.entry(identity)
	if err != nil {
		return nil, nil, err
	}
	return e.proxy.InitialStates(), e.proxy.ErrorStates(), nil
}

// LaunchEnv augments base with the backend selection for the launcher.
func (s *Service) LaunchEnv(identity string, base []string) ([]string, error) {
	e, err := s.entry(identity)
	if err != nil {
		return nil, err
	}
	return e.proxy.LaunchEnv(base), nil
}

// Terminate tears the workload down. Once the result is Terminated the entry
// is dropped; the identity may be reused for a fresh workload afterwards. A
// failed removal keeps the entry so the caller can retry.
func (s *Service) Terminate(ctx context.Context, identity string) (workload.TerminationResult, error) {
	e, err := s.entry(identity)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	result, err := e.proxy.Terminate(ctx)
	e.mu.Unlock()
	if err != nil {
		var ambiguous *workload.AmbiguousWorkloadError
		if errors.As(err, &ambiguous) {
			monitor.AmbiguousLookups.Inc()
		}
		return result, err
	}

	monitor.Terminations.WithLabelValues(string(result)).Inc()
	if result == workload.Terminated {
		s.mu.Lock()
		if _, ok := s.workloads[identity]; ok {
			delete(s.workloads, identity)
			monitor.WorkloadsRegistered.Dec()
		}
		s.mu.Unlock()
		s.logger.Info("Workload terminated", "workload_id", identity)
	} else {
		s.logger.Warn("Workload not terminated, it may be leaked", "workload_id", identity)
	}
	return result, nil
}

// List returns snapshots of every tracked workload without touching the
// backend.
func (s *Service) List() []WorkloadStatus {
	s.mu.RLock()
	entries := make(map[string]*entry, len(s.workloads))
	for id, e := range s.workloads {
		entries[id] = e
	}
	s.mu.RUnlock()

	statuses := make([]WorkloadStatus, 0, len(entries))
	for id, e := range entries {
		e.mu.Lock()
		statuses = append(statuses, *snapshotLocked(id, e, ""))
		e.mu.Unlock()
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Identity < statuses[j].Identity })
	return statuses
}

func snapshotLocked(identity string, e *entry, phase string) *WorkloadStatus {
	return &WorkloadStatus{
		Identity:     identity,
		Mode:         e.mode,
		Phase:        phase,
		RuntimeName:  e.proxy.RuntimeName(),
		AssignedIP:   e.proxy.AssignedIP(),
		AssignedHost: e.proxy.AssignedHost(),
		Polls:        e.polls,
	}
}
