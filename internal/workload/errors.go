package workload

import "fmt"

// AmbiguousWorkloadError reports more than one runtime object matching a
// workload identity. It indicates a labeling invariant breach upstream and
// must reach the caller unmodified.
type AmbiguousWorkloadError struct {
	Kind     string // "container", "service" or "task"
	Identity string
	Count    int
	Service  string // set when the ambiguity is at the task stage
}

func (e *AmbiguousWorkloadError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("found more than one %s (%d) for service %q, workload_id %q",
			e.Kind, e.Count, e.Service, e.Identity)
	}
	return fmt.Sprintf("found more than one %s (%d) for workload_id %q", e.Kind, e.Count, e.Identity)
}
