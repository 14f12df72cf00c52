package config

import (
	"errors"
	"fmt"

	"github.com/OldStager01/energy-intelligence/pkg/validation"
)

// Validate reports every problem at once rather than stopping at the first.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, errors.New("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, errors.New("app.log_level must be one of: debug, info, warn, error"))
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}

	for key, path := range map[string]string{
		"models.forecaster": c.Models.Forecaster,
		"models.anomaly":    c.Models.Anomaly,
		"models.cluster":    c.Models.Cluster,
		"models.scaler":     c.Models.Scaler,
	} {
		if path == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	switch c.Datasets.Source {
	case SourceFile:
		if c.Datasets.Dir == "" {
			errs = append(errs, errors.New("datasets.dir is required for the file source"))
		}
	case SourcePostgres:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required for the postgres source"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required for the postgres source"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	case SourceClickHouse:
		if len(c.ClickHouse.Addr) == 0 {
			errs = append(errs, errors.New("clickhouse.addr is required for the clickhouse source"))
		}
	default:
		errs = append(errs, fmt.Errorf("datasets.source must be one of: %s, %s, %s",
			SourceFile, SourcePostgres, SourceClickHouse))
	}
	if c.Datasets.Timeseries == "" || c.Datasets.VMFeatures == "" || c.Datasets.VMLevel == "" {
		errs = append(errs, errors.New("datasets.timeseries, vm_features and vm_level are required"))
	}
	if c.Datasets.PowerColumn == "" {
		errs = append(errs, errors.New("datasets.power_column is required"))
	}
	errs = append(errs, c.Datasets.validateNames()...)

	if c.Sampler.NoiseFraction <= 0 {
		errs = append(errs, errors.New("sampler.noise_fraction must be positive"))
	}
	if len(c.Sampler.CoreCounts) == 0 {
		errs = append(errs, errors.New("sampler.core_counts must not be empty"))
	}
	for _, n := range c.Sampler.CoreCounts {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("sampler.core_counts must be positive, got %d", n))
			break
		}
	}

	r := c.Recommendation
	if r.CPUIdleThreshold < 0 || r.CPUScaleThreshold > 100 {
		errs = append(errs, errors.New("recommendation thresholds must be between 0 and 100"))
	}
	if r.CPUIdleThreshold >= r.CPUScaleThreshold {
		errs = append(errs, errors.New("recommendation.cpu_idle_threshold must be less than cpu_scale_threshold"))
	}

	if c.Stream.Enabled && c.Stream.Interval <= 0 {
		errs = append(errs, errors.New("stream.interval must be positive"))
	}

	if c.Prometheus.Port < 0 || c.Prometheus.Port > 65535 {
		errs = append(errs, errors.New("prometheus.port must be between 0 and 65535"))
	}
	if c.Prometheus.Port != 0 && c.Prometheus.Port == c.API.Port {
		errs = append(errs, errors.New("prometheus.port must differ from api.port"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}

	return nil
}

// validateNames checks dataset names against what the configured source does
// with them: files are joined onto datasets.dir, tables are spliced into SQL.
func (d DatasetsConfig) validateNames() []error {
	var errs []error
	names := map[string]string{
		"datasets.timeseries":  d.Timeseries,
		"datasets.vm_features": d.VMFeatures,
		"datasets.vm_level":    d.VMLevel,
	}
	for key, name := range names {
		if name == "" {
			continue
		}
		var err error
		if d.Source == SourceFile {
			err = validation.ValidateFileName(name)
		} else {
			err = validation.ValidateIdentifier("table", name)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if d.Source == SourcePostgres || d.Source == SourceClickHouse {
		for key, col := range map[string]string{
			"datasets.power_column": d.PowerColumn,
			"datasets.order_column": d.OrderColumn,
		} {
			if col == "" {
				continue
			}
			if err := validation.ValidateIdentifier("column", col); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	return errs
}
