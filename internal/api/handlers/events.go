package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// EventHandler aggregates lightweight client usage events in memory. Counts
// reset with the process; this is session telemetry, not analytics storage.
type EventHandler struct {
	mu      sync.Mutex
	counts  map[string]int
	started time.Time
}

func NewEventHandler() *EventHandler {
	return &EventHandler{
		counts:  make(map[string]int),
		started: time.Now(),
	}
}

type eventRequest struct {
	Type string `json:"type" binding:"required"`
}

func (h *EventHandler) RecordEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.counts[req.Type]++
	count := h.counts[req.Type]
	h.mu.Unlock()

	c.JSON(http.StatusAccepted, gin.H{"type": req.Type, "count": count})
}

func (h *EventHandler) GetEventSummary(c *gin.Context) {
	h.mu.Lock()
	counts := make(map[string]int, len(h.counts))
	total := 0
	for k, v := range h.counts {
		counts[k] = v
		total += v
	}
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"events": counts,
		"total":  total,
		"since":  h.started,
	})
}
