package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) *Config {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cfg, err := Load("")
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadDefaults(t)

	assert.Equal(t, "energy-intelligence", cfg.App.Name)
	assert.Equal(t, 8000, cfg.API.Port)
	assert.Equal(t, int64(42), cfg.Sampler.Seed)
	assert.Equal(t, 0.01, cfg.Sampler.NoiseFraction)
	assert.Equal(t, []int{2, 4, 8, 16, 32, 64}, cfg.Sampler.CoreCounts)
	assert.Equal(t, 10.0, cfg.Recommendation.CPUIdleThreshold)
	assert.Equal(t, 80.0, cfg.Recommendation.CPUScaleThreshold)
	assert.Equal(t, 5*time.Minute, cfg.Stream.Interval)
	assert.Equal(t, SourceFile, cfg.Datasets.Source)
	assert.Equal(t, "dc_power_w", cfg.Datasets.PowerColumn)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  mode: development
api:
  port: 9100
sampler:
  seed: 7
stream:
  enabled: true
  interval: 30s
`), 0o644))
	t.Setenv("ENERGY_API_PORT", "9200")
	t.Setenv("ENERGY_RECOMMENDATION_CPU_SCALE_THRESHOLD", "90")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Mode)
	assert.Equal(t, 9200, cfg.API.Port)
	assert.Equal(t, int64(7), cfg.Sampler.Seed)
	assert.True(t, cfg.Stream.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Stream.Interval)
	assert.Equal(t, 90.0, cfg.Recommendation.CPUScaleThreshold)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad mode", func(c *Config) { c.App.Mode = "staging" }, "app.mode"},
		{"bad port", func(c *Config) { c.API.Port = 0 }, "api.port"},
		{"missing model", func(c *Config) { c.Models.Scaler = "" }, "models.scaler"},
		{"unknown source", func(c *Config) { c.Datasets.Source = "parquet" }, "datasets.source"},
		{"postgres without host", func(c *Config) {
			c.Datasets.Source = SourcePostgres
			c.Database.Host = ""
		}, "database.host"},
		{"clickhouse without addr", func(c *Config) {
			c.Datasets.Source = SourceClickHouse
			c.ClickHouse.Addr = nil
		}, "clickhouse.addr"},
		{"inverted thresholds", func(c *Config) {
			c.Recommendation.CPUIdleThreshold = 80
			c.Recommendation.CPUScaleThreshold = 10
		}, "cpu_idle_threshold"},
		{"zero noise", func(c *Config) { c.Sampler.NoiseFraction = 0 }, "sampler.noise_fraction"},
		{"empty core counts", func(c *Config) { c.Sampler.CoreCounts = nil }, "core_counts"},
		{"file name escapes dir", func(c *Config) { c.Datasets.VMLevel = "../secrets" }, "datasets.vm_level"},
		{"table name not an identifier", func(c *Config) {
			c.Datasets.Source = SourcePostgres
			c.Datasets.Timeseries = "series; DROP TABLE vm_features"
		}, "datasets.timeseries"},
		{"metrics port clash", func(c *Config) { c.Prometheus.Port = c.API.Port }, "prometheus.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadDefaults(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := loadDefaults(t)
	cfg.App.Name = ""
	cfg.API.Port = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name")
	assert.Contains(t, err.Error(), "api.port")
}

func TestModelsConfig_Path(t *testing.T) {
	m := ModelsConfig{Dir: "artifacts/models"}
	assert.Equal(t, filepath.Join("artifacts/models", "a.json"), m.Path("a.json"))
	assert.Equal(t, "/abs/a.json", m.Path("/abs/a.json"))
	assert.Equal(t, "", m.Path(""))
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.False(t, cfg.Stream.Enabled)
	assert.Equal(t, int64(42), cfg.Sampler.Seed)
	assert.Equal(t, 0.01, cfg.Sampler.NoiseFraction)
}
