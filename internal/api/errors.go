package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reconciler/internal/service"
	"reconciler/internal/workload"
)

var ErrInvalidRequest = errors.New("invalid request")

func respondError(c *gin.Context, code int, err error) {
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func respondErrorWithDetails(c *gin.Context, code int, err error, details string) {
	c.JSON(code, ErrorResponse{
		Error:   err.Error(),
		Code:    code,
		Details: details,
	})
}

// mapServiceError translates registry/backend errors to HTTP status codes.
// Ambiguous lookups are a labeling invariant breach, reported as a conflict;
// anything else from below is a backend communication failure.
func mapServiceError(err error) int {
	var ambiguous *workload.AmbiguousWorkloadError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.As(err, &ambiguous):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
