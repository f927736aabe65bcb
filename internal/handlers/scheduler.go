package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/kubev2v/transfer-agent/api/v1"
)

// GetScheduler returns the worker pool usage
// (GET /scheduler)
func (h *Handler) GetScheduler(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewSchedulerStats(h.scheduler.Name(), h.scheduler.Stats()))
}
