package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetLevels returns the configured threshold table.
func (h *Handler) GetLevels(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-levels")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"levels": h.levelService.Levels()})
}

// GetTargets returns the prediction table together with per-target progress.
func (h *Handler) GetTargets(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-targets")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"targets": h.targetService.Targets(),
		"states":  h.states.All(),
	})
}

// GetAlerts lists recently archived alerts, newest first.
func (h *Handler) GetAlerts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-alerts")
	defer span.End()

	if h.alerts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert archive is disabled"})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	alerts, err := h.alerts.ListRecent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}
