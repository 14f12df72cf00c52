package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "ENERGY"

// Load reads defaults, then the config file, then ENERGY_* environment variables.
// An empty configPath searches the usual locations for config.yaml and falls back
// to defaults when none exists.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/energy-intelligence")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "energy-intelligence")
	v.SetDefault("app.mode", "production")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "15s")

	v.SetDefault("api.port", 8000)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.cors.allowed_origins", []string{"*"})
	v.SetDefault("api.cors.allowed_methods", []string{"*"})
	v.SetDefault("api.cors.allowed_headers", []string{"*"})
	v.SetDefault("api.cors.allow_credentials", true)

	v.SetDefault("models.dir", "artifacts/models")
	v.SetDefault("models.forecaster", "forecast_model.json")
	v.SetDefault("models.anomaly", "anomaly_model.json")
	v.SetDefault("models.cluster", "kmeans_model.json")
	v.SetDefault("models.scaler", "scaler.json")

	v.SetDefault("datasets.source", SourceFile)
	v.SetDefault("datasets.dir", "artifacts/data")
	v.SetDefault("datasets.timeseries", "datacenter_timeseries")
	v.SetDefault("datasets.vm_features", "vm_features")
	v.SetDefault("datasets.vm_level", "vm_level_data")
	v.SetDefault("datasets.power_column", "dc_power_w")
	v.SetDefault("datasets.order_column", "timestamp")
	v.SetDefault("datasets.query_timeout", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "energy")
	v.SetDefault("database.user", "energy")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_connections", 5)
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("clickhouse.addr", []string{"localhost:9000"})
	v.SetDefault("clickhouse.database", "default")
	v.SetDefault("clickhouse.user", "default")
	v.SetDefault("clickhouse.password", "")
	v.SetDefault("clickhouse.dial_timeout", "10s")
	v.SetDefault("clickhouse.max_connections", 5)

	v.SetDefault("sampler.seed", 42)
	v.SetDefault("sampler.noise_fraction", 0.01)
	v.SetDefault("sampler.core_counts", []int{2, 4, 8, 16, 32, 64})

	v.SetDefault("recommendation.cpu_idle_threshold", 10.0)
	v.SetDefault("recommendation.cpu_scale_threshold", 80.0)

	v.SetDefault("stream.enabled", false)
	v.SetDefault("stream.interval", "5m")
	v.SetDefault("stream.buffer_size", 100)

	v.SetDefault("prometheus.enabled", true)
	v.SetDefault("prometheus.port", 0)
}
