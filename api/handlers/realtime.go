package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/energy-intelligence/pkg/models"
)

// Gateway runs the realtime inferences.
type Gateway interface {
	RealtimePower(ctx context.Context) (*models.PowerResponse, error)
	PredictPower(ctx context.Context) (*models.ForecastResponse, error)
	VMInference(ctx context.Context) (*models.VMInferenceResponse, error)
}

type RealtimeHandler struct {
	gateway Gateway
}

func NewRealtimeHandler(g Gateway) *RealtimeHandler {
	return &RealtimeHandler{gateway: g}
}

// Power godoc
// @Summary Simulated power reading
// @Description Samples datacenter power around the last recorded value and flags anomalies
// @Tags Realtime
// @Produce json
// @Success 200 {object} models.PowerResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /realtime/power [get]
func (h *RealtimeHandler) Power(c *gin.Context) {
	resp, err := h.gateway.RealtimePower(c.Request.Context())
	if err != nil {
		inferenceFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Predict godoc
// @Summary Next-interval power forecast
// @Description Forecasts power from the last three recorded readings
// @Tags Realtime
// @Produce json
// @Success 200 {object} models.ForecastResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /realtime/predict [get]
func (h *RealtimeHandler) Predict(c *gin.Context) {
	resp, err := h.gateway.PredictPower(c.Request.Context())
	if err != nil {
		inferenceFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VM godoc
// @Summary Simulated VM inference
// @Description Samples a VM, estimates its power draw, assigns a cluster and recommends an action
// @Tags Realtime
// @Produce json
// @Success 200 {object} models.VMInferenceResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /realtime/vm [get]
func (h *RealtimeHandler) VM(c *gin.Context) {
	resp, err := h.gateway.VMInference(c.Request.Context())
	if err != nil {
		inferenceFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func inferenceFailed(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
