package orchestrator

import (
	"context"
	"fmt"

	"github.com/OldStager01/energy-intelligence/internal/dataset"
	"github.com/OldStager01/energy-intelligence/internal/inference"
	"github.com/OldStager01/energy-intelligence/internal/metrics"
	"github.com/OldStager01/energy-intelligence/internal/sampler"
	"github.com/OldStager01/energy-intelligence/internal/state"
	"github.com/OldStager01/energy-intelligence/pkg/config"
	"github.com/OldStager01/energy-intelligence/pkg/database"
)

const csvExt = ".csv"

// OpenDatabase connects to the database backing a postgres or clickhouse source.
func OpenDatabase(cfg *config.Config) (*database.DB, error) {
	switch cfg.Datasets.Source {
	case config.SourcePostgres:
		d := cfg.Database
		return database.New(database.Config{
			Host:            d.Host,
			Port:            d.Port,
			Name:            d.Name,
			User:            d.User,
			Password:        d.Password,
			MaxConnections:  d.MaxConnections,
			SSLMode:         d.SSLMode,
			ConnMaxLifetime: d.ConnMaxLifetime,
			ConnMaxIdleTime: d.ConnMaxIdleTime,
			PingTimeout:     d.PingTimeout,
		})
	case config.SourceClickHouse:
		c := cfg.ClickHouse
		return database.NewClickHouse(database.ClickHouseConfig{
			Addr:           c.Addr,
			Database:       c.Database,
			User:           c.User,
			Password:       c.Password,
			DialTimeout:    c.DialTimeout,
			MaxConnections: c.MaxConnections,
		})
	default:
		return nil, fmt.Errorf("datasets.source %q has no database", cfg.Datasets.Source)
	}
}

// OpenSource returns the dataset source named by datasets.source.
func OpenSource(cfg *config.Config) (dataset.Source, error) {
	if cfg.Datasets.Source == config.SourceFile {
		return dataset.NewFileSource(cfg.Datasets.Dir), nil
	}
	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	return dataset.NewSQLSource(db.DB), nil
}

// StateConfig maps the configuration onto what the state loader needs.
func StateConfig(cfg *config.Config, src dataset.Source) state.Config {
	name := func(n string) string {
		if cfg.Datasets.Source == config.SourceFile {
			return n + csvExt
		}
		return n
	}

	return state.Config{
		Models: state.ModelPaths{
			Forecaster: cfg.Models.Path(cfg.Models.Forecaster),
			Anomaly:    cfg.Models.Path(cfg.Models.Anomaly),
			Cluster:    cfg.Models.Path(cfg.Models.Cluster),
			Scaler:     cfg.Models.Path(cfg.Models.Scaler),
		},
		Source: src,
		Series: dataset.SeriesRef{
			Name:    name(cfg.Datasets.Timeseries),
			Column:  cfg.Datasets.PowerColumn,
			OrderBy: cfg.Datasets.OrderColumn,
		},
		VMFeatures: name(cfg.Datasets.VMFeatures),
		VMLevel:    name(cfg.Datasets.VMLevel),
	}
}

// LoadState opens the configured source, loads every artifact and releases the
// source again. Nothing is read after startup.
func LoadState(ctx context.Context, cfg *config.Config) (*state.State, error) {
	src, err := OpenSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset source: %w", err)
	}
	defer src.Close()

	if cfg.Datasets.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Datasets.QueryTimeout)
		defer cancel()
	}

	return state.Load(ctx, StateConfig(cfg, src))
}

// NewGateway wires a seeded sampler and the loaded models into a gateway.
// m may be nil.
func NewGateway(cfg *config.Config, st *state.State, m *metrics.Metrics) *inference.Gateway {
	smp := sampler.New(st.Series, sampler.NewRand(cfg.Sampler.Seed), sampler.Config{
		NoiseFraction: cfg.Sampler.NoiseFraction,
		CoreCounts:    cfg.Sampler.CoreCounts,
	})

	return inference.NewGateway(inference.GatewayConfig{
		Sampler: smp,
		Invoker: inference.NewInvoker(st.Forecaster, st.AnomalyDetector, st.ClusterAssigner, st.Scaler),
		History: st.Series,
		Policy: inference.Policy{
			IdleThreshold:  cfg.Recommendation.CPUIdleThreshold,
			ScaleThreshold: cfg.Recommendation.CPUScaleThreshold,
		},
		Metrics: m,
	})
}
