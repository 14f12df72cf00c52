package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/energy-intelligence/internal/state"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

// StateReporter describes the artifacts the gateway was started with.
type StateReporter interface {
	Summary() state.Summary
}

// HealthChecker answers the health check. The inference gateway implements it.
type HealthChecker interface {
	Health() models.HealthResponse
}

type HealthHandler struct {
	state   StateReporter
	checker HealthChecker
}

// NewHealthHandler builds the health handlers. A nil checker reports ok.
func NewHealthHandler(s StateReporter, checker HealthChecker) *HealthHandler {
	return &HealthHandler{state: s, checker: checker}
}

type ReadyResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	State     state.Summary `json:"state"`
}

// Health godoc
// @Summary Health check
// @Description Constant success once the gateway is serving
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.checker == nil {
		c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
		return
	}
	c.JSON(http.StatusOK, h.checker.Health())
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "alive"})
}

// Ready godoc
// @Summary Readiness probe
// @Description Reports the loaded models and datasets
// @Tags Health
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.state == nil {
		c.JSON(http.StatusServiceUnavailable, models.HealthResponse{Status: "not ready"})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		State:     h.state.Summary(),
	})
}
