package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hunarscan/internal/utils"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	version string
	checks  map[string]HealthCheck
}

func NewHealthHandler(version string, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			components[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	resp := utils.APIResponse{
		Success: status == http.StatusOK,
		Status:  utils.StatusSuccess,
		Data: gin.H{
			"app":        utils.AppName,
			"version":    h.version,
			"components": components,
		},
		Timestamp: time.Now(),
	}
	if !resp.Success {
		resp.Status = utils.StatusError
	}
	c.JSON(status, resp)
}
