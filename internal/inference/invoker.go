// Package inference turns sampled or historical telemetry into model predictions and
// composes them into API responses.
package inference

import (
	"errors"
	"fmt"
	"math"

	"github.com/OldStager01/energy-intelligence/internal/model"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

// Per-core power draw bounds in watts.
const (
	IdleWattsPerCore = 60.0
	MaxWattsPerCore  = 250.0
)

var (
	ErrInsufficientHistory = errors.New("forecast needs at least 3 readings")
	ErrInvalidCluster      = errors.New("cluster assigner returned a non-integer id")
)

// Invoker feeds features to the loaded models.
type Invoker struct {
	forecaster model.Predictor
	anomaly    model.Predictor
	cluster    model.Predictor
	scaler     model.Transformer
}

func NewInvoker(forecaster, anomaly, cluster model.Predictor, scaler model.Transformer) *Invoker {
	return &Invoker{
		forecaster: forecaster,
		anomaly:    anomaly,
		cluster:    cluster,
		scaler:     scaler,
	}
}

// Health always succeeds. Every model was checked when it was loaded.
func (i *Invoker) Health() models.HealthResponse {
	return models.HealthResponse{Status: "ok"}
}

// DetectAnomaly reports whether the detector labels power an outlier.
func (i *Invoker) DetectAnomaly(power float64) (bool, error) {
	label, err := i.anomaly.Predict([]float64{power})
	if err != nil {
		return false, fmt.Errorf("anomaly detection failed: %w", err)
	}
	return label == model.LabelOutlier, nil
}

// ForecastFeatures builds [v[-1], v[-2], mean(v[-3:])] from a history ordered oldest
// first.
func ForecastFeatures(history []float64) ([]float64, error) {
	n := len(history)
	if n < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientHistory, n)
	}
	last3 := history[n-3:]
	mean := (last3[0] + last3[1] + last3[2]) / 3
	return []float64{history[n-1], history[n-2], mean}, nil
}

// ForecastNext predicts the next reading. The prediction is returned unmodified.
func (i *Invoker) ForecastNext(history []float64) (float64, error) {
	features, err := ForecastFeatures(history)
	if err != nil {
		return 0, err
	}
	pred, err := i.forecaster.Predict(features)
	if err != nil {
		return 0, fmt.Errorf("forecast failed: %w", err)
	}
	return pred, nil
}

// EstimatePower interpolates linearly between idle and max per-core draw by
// utilization and scales by core count.
func EstimatePower(cpuAvg float64, coreCount int) float64 {
	return float64(coreCount) * (IdleWattsPerCore + (cpuAvg/100)*(MaxWattsPerCore-IdleWattsPerCore))
}

// ClusterVM scales [cpu_avg, core_count, est_power] and assigns a cluster id.
func (i *Invoker) ClusterVM(cpuAvg float64, coreCount int, estPower float64) (int, error) {
	scaled, err := i.scaler.Transform([]float64{cpuAvg, float64(coreCount), estPower})
	if err != nil {
		return 0, fmt.Errorf("feature scaling failed: %w", err)
	}
	id, err := i.cluster.Predict(scaled)
	if err != nil {
		return 0, fmt.Errorf("cluster assignment failed: %w", err)
	}
	if id != math.Trunc(id) || math.IsInf(id, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCluster, id)
	}
	return int(id), nil
}
