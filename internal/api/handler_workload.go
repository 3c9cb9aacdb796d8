package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reconciler/internal/service"
	"reconciler/internal/workload"
)

type WorkloadHandler struct {
	svc *service.Service
}

func NewWorkloadHandler(svc *service.Service) *WorkloadHandler {
	return &WorkloadHandler{svc: svc}
}

func (h *WorkloadHandler) Register(c *gin.Context) {
	var req RegisterWorkloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	if err := h.svc.Register(req.WorkloadID, workload.ParseMode(req.Mode)); err != nil {
		respondError(c, mapServiceError(err), err)
		return
	}

	c.JSON(http.StatusCreated, WorkloadResponse{
		WorkloadID: req.WorkloadID,
		Mode:       req.Mode,
	})
}

func (h *WorkloadHandler) List(c *gin.Context) {
	statuses := h.svc.List()

	resp := WorkloadListResponse{Workloads: []WorkloadResponse{}}
	for i := range statuses {
		resp.Workloads = append(resp.Workloads, mapWorkloadStatus(&statuses[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Status performs one backend poll for the workload. ?quiet=1 suppresses the
// per-poll diagnostic log line.
func (h *WorkloadHandler) Status(c *gin.Context) {
	identity := c.Param("id")
	quiet := c.Query("quiet") == "1" || c.Query("quiet") == "true"

	st, err := h.svc.Status(c.Request.Context(), identity, quiet)
	if err != nil {
		respondError(c, mapServiceError(err), err)
		return
	}
	c.JSON(http.StatusOK, mapWorkloadStatus(st))
}

func (h *WorkloadHandler) Phases(c *gin.Context) {
	initial, errorStates, err := h.svc.Phases(c.Param("id"))
	if err != nil {
		respondError(c, mapServiceError(err), err)
		return
	}
	c.JSON(http.StatusOK, PhasesResponse{Initial: initial, Error: errorStates})
}

// LaunchEnv returns the caller-supplied environment augmented with the
// backend mode tag and network selection for the external launcher.
func (h *WorkloadHandler) LaunchEnv(c *gin.Context) {
	var req LaunchEnvRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, ErrInvalidRequest, err.Error())
		return
	}

	env, err := h.svc.LaunchEnv(c.Param("id"), req.Env)
	if err != nil {
		respondError(c, mapServiceError(err), err)
		return
	}
	c.JSON(http.StatusOK, LaunchEnvResponse{Env: env})
}

func (h *WorkloadHandler) Terminate(c *gin.Context) {
	identity := c.Param("id")

	result, err := h.svc.Terminate(c.Request.Context(), identity)
	if err != nil {
		respondError(c, mapServiceError(err), err)
		return
	}

	code := http.StatusOK
	if result == workload.TerminationFailed {
		code = http.StatusBadGateway
	}
	c.JSON(code, TerminateResponse{WorkloadID: identity, Result: string(result)})
}
