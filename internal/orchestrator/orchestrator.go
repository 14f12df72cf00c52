// Package orchestrator assembles the gateway from configuration and owns the
// lifecycle of its background parts.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/OldStager01/energy-intelligence/internal/events"
	"github.com/OldStager01/energy-intelligence/internal/inference"
	"github.com/OldStager01/energy-intelligence/internal/logger"
	"github.com/OldStager01/energy-intelligence/internal/metrics"
	"github.com/OldStager01/energy-intelligence/internal/state"
	"github.com/OldStager01/energy-intelligence/internal/stream"
	"github.com/OldStager01/energy-intelligence/pkg/config"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

type Orchestrator struct {
	config      *config.Config
	state       *state.State
	gateway     *inference.Gateway
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	stream      *stream.Loop
}

// New loads all artifacts and builds the gateway. It fails if any artifact is
// missing or malformed.
func New(ctx context.Context, cfg *config.Config) (*Orchestrator, error) {
	st, err := LoadState(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithState(cfg, st)
}

// NewWithState builds the gateway around an already loaded state.
func NewWithState(cfg *config.Config, st *state.State) (*Orchestrator, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	eventBus := events.NewEventBus(cfg.Stream.BufferSize)
	gateway := NewGateway(cfg, st, m)

	o := &Orchestrator{
		config:      cfg,
		state:       st,
		gateway:     gateway,
		registry:    registry,
		metrics:     m,
		eventBus:    eventBus,
		eventLogger: events.NewEventLogger(eventBus.SubscribeAll()),
	}

	if cfg.Stream.Enabled {
		o.stream = stream.New(stream.Config{
			Interval:  cfg.Stream.Interval,
			Gateway:   gateway,
			Publisher: events.NewPublisher(eventBus, cfg.App.Name),
		})
	}

	return o, nil
}

func (o *Orchestrator) Start() {
	logger.Info("Orchestrator starting")
	o.eventLogger.Start()
	if o.stream != nil {
		o.stream.Start()
	}
}

func (o *Orchestrator) Stop() {
	logger.Info("Orchestrator stopping")

	if o.stream != nil {
		o.stream.Stop()
	}
	o.eventLogger.Stop()
	o.eventBus.Close()

	logger.Info("Orchestrator stopped")
}

func (o *Orchestrator) Gateway() *inference.Gateway {
	return o.gateway
}

func (o *Orchestrator) State() *state.State {
	return o.state
}

func (o *Orchestrator) Registry() *prometheus.Registry {
	return o.registry
}

func (o *Orchestrator) Metrics() *metrics.Metrics {
	return o.metrics
}

// SubscribeAllEvents must be called before Start to see the first stream cycle.
func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}
