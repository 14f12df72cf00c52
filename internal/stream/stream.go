// Package stream periodically samples power, checks it for anomalies and publishes
// the results on the event bus.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/OldStager01/energy-intelligence/internal/events"
	"github.com/OldStager01/energy-intelligence/internal/logger"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

const DefaultInterval = 5 * time.Minute

// Inferencer is the subset of the gateway the loop drives.
type Inferencer interface {
	RealtimePower(ctx context.Context) (*models.PowerResponse, error)
	PredictPower(ctx context.Context) (*models.ForecastResponse, error)
}

type Config struct {
	Interval  time.Duration
	Gateway   Inferencer
	Publisher *events.Publisher
}

type Loop struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func New(cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Loop{config: cfg}
}

func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.running = true
	l.wg.Add(1)
	go l.run()

	logger.WithComponent("stream").Infof("Telemetry stream started (interval %s)", l.config.Interval)
}

func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()

	l.cancel()
	l.wg.Wait()

	logger.WithComponent("stream").Info("Telemetry stream stopped")
}

func (l *Loop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) run() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	l.runCycle()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			l.runCycle()
		}
	}
}

func (l *Loop) runCycle() {
	traceID := models.NewUUID()
	ctx := logger.WithTraceID(l.ctx, traceID)
	pub := l.config.Publisher.WithTraceID(traceID)

	reading, err := l.config.Gateway.RealtimePower(ctx)
	if err != nil {
		pub.Error("Power sampling failed", err)
		return
	}
	pub.PowerSampled(reading)
	if reading.Anomaly {
		pub.AnomalyDetected(reading)
	}

	forecast, err := l.config.Gateway.PredictPower(ctx)
	if err != nil {
		pub.Error("Forecast failed", err)
		return
	}
	pub.ForecastMade(forecast)
}
