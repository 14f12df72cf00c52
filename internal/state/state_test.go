package state

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-intelligence/internal/dataset"
	"github.com/OldStager01/energy-intelligence/internal/model"
)

func testConfig() Config {
	return Config{
		Models: ModelPaths{
			Forecaster: filepath.Join("testdata", "models", "forecast_model.json"),
			Anomaly:    filepath.Join("testdata", "models", "anomaly_model.json"),
			Cluster:    filepath.Join("testdata", "models", "kmeans_model.json"),
			Scaler:     filepath.Join("testdata", "models", "scaler.json"),
		},
		Source: dataset.NewFileSource(filepath.Join("testdata", "data")),
		Series: dataset.SeriesRef{
			Name:    "datacenter_timeseries.csv",
			Column:  "dc_power_w",
			OrderBy: "timestamp",
		},
		VMFeatures: "vm_features.csv",
		VMLevel:    "vm_level_data.csv",
	}
}

func TestLoad_Success(t *testing.T) {
	s, err := Load(context.Background(), testConfig())
	require.NoError(t, err)

	assert.NotNil(t, s.Forecaster)
	assert.NotNil(t, s.AnomalyDetector)
	assert.NotNil(t, s.ClusterAssigner)
	assert.NotNil(t, s.Scaler)
	assert.Equal(t, []float64{100, 110, 105}, s.Series.Tail(ForecastWindow))

	summary := s.Summary()
	assert.Equal(t, 3, summary.PowerReadings)
	assert.Equal(t, 105.0, summary.LastPowerW)
	assert.Equal(t, 2, summary.VMFeatureRows)
	assert.Equal(t, 1, summary.VMLevelRows)
	assert.Equal(t, model.KindLinearRegression, summary.Models[RoleForecaster].Kind)
	assert.Equal(t, model.KindStandardScaler, summary.Models[RoleScaler].Kind)
	assert.False(t, summary.LoadedAt.IsZero())
}

func TestLoad_Failures(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "missing forecaster",
			modify: func(c *Config) { c.Models.Forecaster = filepath.Join("testdata", "models", "nope.json") },
		},
		{
			name:    "anomaly detector given a three feature model",
			modify:  func(c *Config) { c.Models.Anomaly = c.Models.Cluster },
			wantErr: model.ErrFeatureMismatch,
		},
		{
			name:    "scaler with wrong width",
			modify:  func(c *Config) { c.Models.Scaler = filepath.Join("testdata", "models", "scaler_2d.json") },
			wantErr: model.ErrFeatureMismatch,
		},
		{
			name:    "scaler given a predictor artifact",
			modify:  func(c *Config) { c.Models.Scaler = c.Models.Cluster },
			wantErr: model.ErrUnknownKind,
		},
		{
			name:    "history shorter than forecast window",
			modify:  func(c *Config) { c.Series.Name = "short_timeseries.csv" },
			wantErr: ErrInsufficientHistory,
		},
		{
			name:    "series column missing",
			modify:  func(c *Config) { c.Series.Column = "power" },
			wantErr: dataset.ErrColumnNotFound,
		},
		{
			name:   "vm table missing",
			modify: func(c *Config) { c.VMLevel = "missing.csv" },
		},
		{
			name:   "no source",
			modify: func(c *Config) { c.Source = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)

			s, err := Load(context.Background(), cfg)

			require.Error(t, err)
			assert.Nil(t, s)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
