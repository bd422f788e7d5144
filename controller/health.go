package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"media-engine-backend/response"
)

// Health reports API liveness, AI backend reachability and the state
// of its circuit.
func Health(c *gin.Context) {
	status := response.HealthResponse{
		Status:       "ok",
		AIBackend:    "ok",
		CircuitState: string(aiBackend.Breaker().State()),
	}
	if err := aiBackend.Health(c.Request.Context()); err != nil {
		status.AIBackend = "unreachable"
	}

	c.JSON(http.StatusOK, response.Response{
		Data: status,
	})
}
