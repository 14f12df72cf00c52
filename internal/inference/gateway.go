package inference

import (
	"context"
	"time"

	"github.com/OldStager01/energy-intelligence/internal/logger"
	"github.com/OldStager01/energy-intelligence/internal/metrics"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

// Endpoint names used for metrics and logs.
const (
	EndpointPower   = "power"
	EndpointPredict = "predict"
	EndpointVM      = "vm"
)

// Sampler produces synthetic telemetry.
type Sampler interface {
	SamplePower() models.PowerReading
	SampleVM() models.VMSnapshot
}

// History provides the trailing power readings used for forecasting.
type History interface {
	Tail(n int) []float64
}

type GatewayConfig struct {
	Sampler Sampler
	Invoker *Invoker
	History History
	Policy  Policy
	Metrics *metrics.Metrics
}

// Gateway runs sample, invoke and compose for each realtime endpoint. It holds no
// mutable state of its own.
type Gateway struct {
	sampler Sampler
	invoker *Invoker
	history History
	policy  Policy
	metrics *metrics.Metrics
}

func NewGateway(cfg GatewayConfig) *Gateway {
	policy := cfg.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	return &Gateway{
		sampler: cfg.Sampler,
		invoker: cfg.Invoker,
		history: cfg.History,
		policy:  policy,
		metrics: cfg.Metrics,
	}
}

func (g *Gateway) Health() models.HealthResponse {
	return g.invoker.Health()
}

// RealtimePower samples a reading and flags it if the detector calls it an outlier.
func (g *Gateway) RealtimePower(ctx context.Context) (*models.PowerResponse, error) {
	start := time.Now()

	power := float64(g.sampler.SamplePower())
	anomaly, err := g.invoker.DetectAnomaly(power)
	g.metrics.ObserveInference(EndpointPower, time.Since(start), err)
	if err != nil {
		logger.ErrorCtxf(ctx, "Power inference failed: %v", err)
		return nil, err
	}

	g.metrics.RecordPower(power, anomaly)
	if anomaly {
		logger.WarnCtxf(ctx, "Anomalous power reading: %.2f W", power)
	} else {
		logger.DebugCtxf(ctx, "Sampled power reading: %.2f W", power)
	}

	return &models.PowerResponse{DCPowerW: power, Anomaly: anomaly}, nil
}

// PredictPower forecasts the next interval from the last recorded readings.
func (g *Gateway) PredictPower(ctx context.Context) (*models.ForecastResponse, error) {
	start := time.Now()

	pred, err := g.invoker.ForecastNext(g.history.Tail(3))
	g.metrics.ObserveInference(EndpointPredict, time.Since(start), err)
	if err != nil {
		logger.ErrorCtxf(ctx, "Forecast failed: %v", err)
		return nil, err
	}

	g.metrics.RecordForecast(pred)
	logger.DebugCtxf(ctx, "Forecast next interval: %.2f W", pred)

	return &models.ForecastResponse{PredictedPowerW: pred}, nil
}

// VMInference samples a VM, estimates its draw, assigns a cluster and recommends
// an action.
func (g *Gateway) VMInference(ctx context.Context) (*models.VMInferenceResponse, error) {
	start := time.Now()

	vm := g.sampler.SampleVM()
	est := EstimatePower(vm.CPUAvg, vm.CoreCount)
	cluster, err := g.invoker.ClusterVM(vm.CPUAvg, vm.CoreCount, est)
	g.metrics.ObserveInference(EndpointVM, time.Since(start), err)
	if err != nil {
		logger.ErrorCtxf(ctx, "VM inference failed: %v", err)
		return nil, err
	}

	rec := g.policy.Recommend(vm.CPUAvg)
	g.metrics.RecordVM(cluster, rec)
	logger.DebugCtxf(ctx, "VM cpu=%.2f cores=%d cluster=%d: %s", vm.CPUAvg, vm.CoreCount, cluster, rec)

	return &models.VMInferenceResponse{
		CPUAvg:          vm.CPUAvg,
		CoreCount:       vm.CoreCount,
		EstimatedPowerW: est,
		Cluster:         cluster,
		Recommendation:  rec,
	}, nil
}
