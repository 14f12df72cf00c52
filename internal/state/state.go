// Package state loads every artifact the gateway serves from, once, at startup.
// Either everything loads or Load fails; a State is never partially populated.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OldStager01/energy-intelligence/internal/dataset"
	"github.com/OldStager01/energy-intelligence/internal/logger"
	"github.com/OldStager01/energy-intelligence/internal/model"
)

// ForecastWindow is the number of trailing readings the forecaster consumes.
const ForecastWindow = 3

// Expected feature counts per model role.
const (
	forecasterFeatures = 3
	anomalyFeatures    = 1
	clusterFeatures    = 3
)

var ErrInsufficientHistory = errors.New("insufficient power history")

// Model roles, used as keys in State.Models.
const (
	RoleForecaster = "forecaster"
	RoleAnomaly    = "anomaly_detector"
	RoleCluster    = "cluster_assigner"
	RoleScaler     = "scaler"
)

type ModelPaths struct {
	Forecaster string
	Anomaly    string
	Cluster    string
	Scaler     string
}

type Config struct {
	Models     ModelPaths
	Source     dataset.Source
	Series     dataset.SeriesRef
	VMFeatures string
	VMLevel    string
}

// State is the read-only, process-wide set of loaded artifacts.
type State struct {
	Forecaster      model.Predictor
	AnomalyDetector model.Predictor
	ClusterAssigner model.Predictor
	Scaler          model.Transformer

	Series     *dataset.Series
	VMFeatures *dataset.Table
	VMLevel    *dataset.Table

	Models   map[string]model.Info
	LoadedAt time.Time
}

func Load(ctx context.Context, cfg Config) (*State, error) {
	if cfg.Source == nil {
		return nil, errors.New("dataset source is required")
	}

	s := &State{Models: make(map[string]model.Info, 4)}

	predictors := []struct {
		role   string
		path   string
		want   int
		target *model.Predictor
	}{
		{RoleForecaster, cfg.Models.Forecaster, forecasterFeatures, &s.Forecaster},
		{RoleAnomaly, cfg.Models.Anomaly, anomalyFeatures, &s.AnomalyDetector},
		{RoleCluster, cfg.Models.Cluster, clusterFeatures, &s.ClusterAssigner},
	}
	for _, p := range predictors {
		m, info, err := model.LoadPredictor(p.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", p.role, err)
		}
		if info.NFeatures != p.want {
			return nil, fmt.Errorf("%s expects %d features, artifact has %d: %w",
				p.role, p.want, info.NFeatures, model.ErrFeatureMismatch)
		}
		*p.target = m
		s.Models[p.role] = info
		logger.WithModel(p.role, info.Kind).Infof("Loaded model from %s", p.path)
	}

	scaler, info, err := model.LoadTransformer(cfg.Models.Scaler)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", RoleScaler, err)
	}
	if info.NFeatures != clusterFeatures {
		return nil, fmt.Errorf("%s expects %d features, artifact has %d: %w",
			RoleScaler, clusterFeatures, info.NFeatures, model.ErrFeatureMismatch)
	}
	s.Scaler = scaler
	s.Models[RoleScaler] = info
	logger.WithModel(RoleScaler, info.Kind).Infof("Loaded model from %s", cfg.Models.Scaler)

	series, err := cfg.Source.Series(ctx, cfg.Series)
	if err != nil {
		return nil, fmt.Errorf("failed to load power series: %w", err)
	}
	if series.Len() < ForecastWindow {
		return nil, fmt.Errorf("%w: %d readings, need %d", ErrInsufficientHistory, series.Len(), ForecastWindow)
	}
	s.Series = series

	if s.VMFeatures, err = cfg.Source.Table(ctx, cfg.VMFeatures); err != nil {
		return nil, fmt.Errorf("failed to load vm feature table: %w", err)
	}
	if s.VMLevel, err = cfg.Source.Table(ctx, cfg.VMLevel); err != nil {
		return nil, fmt.Errorf("failed to load vm level table: %w", err)
	}

	s.LoadedAt = time.Now().UTC()
	logger.WithComponent("state").Infof("Loaded %d power readings, %d vm feature rows, %d vm level rows",
		s.Series.Len(), s.VMFeatures.Len(), s.VMLevel.Len())
	return s, nil
}

// Summary describes what was loaded, for readiness reporting.
type Summary struct {
	Models        map[string]model.Info `json:"models"`
	PowerReadings int                   `json:"power_readings"`
	LastPowerW    float64               `json:"last_power_w"`
	VMFeatureRows int                   `json:"vm_feature_rows"`
	VMLevelRows   int                   `json:"vm_level_rows"`
	LoadedAt      time.Time             `json:"loaded_at"`
}

func (s *State) Summary() Summary {
	models := make(map[string]model.Info, len(s.Models))
	for k, v := range s.Models {
		models[k] = v
	}
	return Summary{
		Models:        models,
		PowerReadings: s.Series.Len(),
		LastPowerW:    s.Series.Last(),
		VMFeatureRows: s.VMFeatures.Len(),
		VMLevelRows:   s.VMLevel.Len(),
		LoadedAt:      s.LoadedAt,
	}
}
