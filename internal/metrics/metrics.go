package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/energy-intelligence/internal/logger"
)

const namespace = "energy_gateway"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the gateway's collectors. A nil *Metrics records nothing, so
// callers that do not care about metrics can pass nil.
type Metrics struct {
	inferencesTotal      *prometheus.CounterVec
	inferenceLatency     *prometheus.HistogramVec
	anomaliesTotal       prometheus.Counter
	clusterAssignments   *prometheus.CounterVec
	recommendationsTotal *prometheus.CounterVec
	lastPower            prometheus.Gauge
	lastForecast         prometheus.Gauge
	streamClients        prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		inferencesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inferences_total",
				Help:      "Total number of inference calls by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		inferenceLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "inference_duration_seconds",
				Help:      "Inference latency by endpoint",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
			},
			[]string{"endpoint"},
		),
		anomaliesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "power_anomalies_total",
			Help:      "Total number of power readings flagged as anomalous",
		}),
		clusterAssignments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vm_cluster_assignments_total",
				Help:      "Total number of simulated VMs assigned to each cluster",
			},
			[]string{"cluster"},
		),
		recommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vm_recommendations_total",
				Help:      "Total number of scaling recommendations by rule",
			},
			[]string{"recommendation"},
		),
		lastPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_power_watts",
			Help:      "Most recently sampled datacenter power draw",
		}),
		lastForecast: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_forecast_watts",
			Help:      "Most recent next-interval power forecast",
		}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_clients",
			Help:      "Connected realtime stream clients",
		}),
	}

	collectors := []prometheus.Collector{
		m.inferencesTotal,
		m.inferenceLatency,
		m.anomaliesTotal,
		m.clusterAssignments,
		m.recommendationsTotal,
		m.lastPower,
		m.lastForecast,
		m.streamClients,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveInference(endpoint string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.inferencesTotal.WithLabelValues(endpoint, outcome).Inc()
	m.inferenceLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) RecordPower(watts float64, anomaly bool) {
	if m == nil {
		return
	}
	m.lastPower.Set(watts)
	if anomaly {
		m.anomaliesTotal.Inc()
	}
}

func (m *Metrics) RecordForecast(watts float64) {
	if m == nil {
		return
	}
	m.lastForecast.Set(watts)
}

func (m *Metrics) RecordVM(cluster int, recommendation string) {
	if m == nil {
		return
	}
	m.clusterAssignments.WithLabelValues(strconv.Itoa(cluster)).Inc()
	m.recommendationsTotal.WithLabelValues(recommendation).Inc()
}

func (m *Metrics) SetStreamClients(n int) {
	if m == nil {
		return
	}
	m.streamClients.Set(float64(n))
}

// Handler exposes everything gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// StartServer serves /metrics on its own port.
func StartServer(port int, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Infof("Prometheus metrics server listening on %s", srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
	return srv
}
