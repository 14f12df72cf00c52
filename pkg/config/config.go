package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Dataset source kinds.
const (
	SourceFile       = "file"
	SourcePostgres   = "postgres"
	SourceClickHouse = "clickhouse"
)

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	API            APIConfig            `mapstructure:"api"`
	Models         ModelsConfig         `mapstructure:"models"`
	Datasets       DatasetsConfig       `mapstructure:"datasets"`
	Database       DatabaseConfig       `mapstructure:"database"`
	ClickHouse     ClickHouseConfig     `mapstructure:"clickhouse"`
	Sampler        SamplerConfig        `mapstructure:"sampler"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Stream         StreamConfig         `mapstructure:"stream"`
	Prometheus     PrometheusConfig     `mapstructure:"prometheus"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORS         CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

// ModelsConfig holds artifact paths. Relative paths resolve against Dir.
type ModelsConfig struct {
	Dir        string `mapstructure:"dir"`
	Forecaster string `mapstructure:"forecaster"`
	Anomaly    string `mapstructure:"anomaly"`
	Cluster    string `mapstructure:"cluster"`
	Scaler     string `mapstructure:"scaler"`
}

func (m ModelsConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) || m.Dir == "" {
		return name
	}
	return filepath.Join(m.Dir, name)
}

// DatasetsConfig names the three tables. For the file source each name is a CSV
// file in Dir without its extension.
type DatasetsConfig struct {
	Source       string        `mapstructure:"source"`
	Dir          string        `mapstructure:"dir"`
	Timeseries   string        `mapstructure:"timeseries"`
	VMFeatures   string        `mapstructure:"vm_features"`
	VMLevel      string        `mapstructure:"vm_level"`
	PowerColumn  string        `mapstructure:"power_column"`
	OrderColumn  string        `mapstructure:"order_column"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxConnections  int           `mapstructure:"max_connections"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}

type ClickHouseConfig struct {
	Addr           []string      `mapstructure:"addr"`
	Database       string        `mapstructure:"database"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	DialTimeout    time.Duration `mapstructure:"dial_timeout"`
	MaxConnections int           `mapstructure:"max_connections"`
}

type SamplerConfig struct {
	Seed          int64   `mapstructure:"seed"`
	NoiseFraction float64 `mapstructure:"noise_fraction"`
	CoreCounts    []int   `mapstructure:"core_counts"`
}

type RecommendationConfig struct {
	CPUIdleThreshold  float64 `mapstructure:"cpu_idle_threshold"`
	CPUScaleThreshold float64 `mapstructure:"cpu_scale_threshold"`
}

type StreamConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Interval   time.Duration `mapstructure:"interval"`
	BufferSize int           `mapstructure:"buffer_size"`
}

// PrometheusConfig controls metrics exposure. Port 0 serves /metrics on the API
// port instead of a dedicated listener.
type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}
