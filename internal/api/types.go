package api

import (
	"time"

	"reconciler/internal/service"
)

type RegisterWorkloadRequest struct {
	WorkloadID string `json:"workload_id" binding:"required"`
	Mode       string `json:"mode" binding:"required,oneof=docker swarm"`
}

type WorkloadResponse struct {
	WorkloadID   string `json:"workload_id"`
	Mode         string `json:"mode"`
	Phase        string `json:"phase"`
	RuntimeName  string `json:"runtime_name,omitempty"`
	AssignedIP   string `json:"assigned_ip,omitempty"`
	AssignedHost string `json:"assigned_host,omitempty"`
	Polls        int    `json:"polls"`
}

type WorkloadListResponse struct {
	Workloads []WorkloadResponse `json:"workloads"`
}

type PhasesResponse struct {
	Initial []string `json:"initial"`
	Error   []string `json:"error"`
}

type LaunchEnvRequest struct {
	Env []string `json:"env"`
}

type LaunchEnvResponse struct {
	Env []string `json:"env"`
}

type TerminateResponse struct {
	WorkloadID string `json:"workload_id"`
	Result     string `json:"result"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details string `json:"details,omitempty"`
}

func mapWorkloadStatus(st *service.WorkloadStatus) WorkloadResponse {
	return WorkloadResponse{
		WorkloadID:   st.Identity,
		Mode:         string(st.Mode),
		Phase:        st.Phase,
		RuntimeName:  st.RuntimeName,
		AssignedIP:   st.AssignedIP,
		AssignedHost: st.AssignedHost,
		Polls:        st.Polls,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
