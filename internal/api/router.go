package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reconciler/internal/service"
)

func NewRouter(svc *service.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware())
	r.Use(RequestIDMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: formatTime(time.Now()),
		})
	})

	handler := NewWorkloadHandler(svc)

	v1 := r.Group("/api/v1")
	{
		workloads := v1.Group("/workloads")
		{
			workloads.POST("", handler.Register)
			workloads.GET("", handler.List)
			workloads.GET("/:id", handler.Status)
			workloads.GET("/:id/phases", handler.Phases)
			workloads.POST("/:id/env", handler.LaunchEnv)
			workloads.DELETE("/:id", handler.Terminate)
		}
	}

	return r
}
