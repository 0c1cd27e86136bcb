// Package config loads service configuration from struct defaults, an
// optional YAML file, and NPB_-prefixed environment variables, in that
// order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Generation GenerationConfig `koanf:"generation"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

type DatabaseConfig struct {
	// Enabled gates persistence of generated numbers; without it the
	// uniqueness scope is the process lifetime.
	Enabled         bool          `koanf:"enabled"`
	URL             string        `koanf:"url"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
}

type RedisConfig struct {
	// Enabled gates the shared uniqueness store for multi-instance runs.
	Enabled      bool          `koanf:"enabled"`
	Address      string        `koanf:"address"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	KeyPrefix    string        `koanf:"key_prefix"`
}

type TelemetryConfig struct {
	Enabled      bool          `koanf:"enabled"`
	OTLPEndpoint string        `koanf:"otlp_endpoint"`
	SamplingRate float64       `koanf:"sampling_rate"`
	BatchTimeout time.Duration `koanf:"batch_timeout"`
}

type GenerationConfig struct {
	// Seed fixes the random source for reproducible runs; 0 means
	// time-seeded.
	Seed int64 `koanf:"seed"`
	// MaxBatchSize bounds the total numbers one API request may ask for.
	MaxBatchSize int `koanf:"max_batch_size"`
	// MaxRecords bounds the rows accepted by one validation request.
	MaxRecords int `koanf:"max_records"`
}

// Load reads configuration from defaults, the YAML file at path (optional;
// "" falls back to configs/config.yaml if present), and NPB_ environment
// variables (NPB_SERVER_PORT → server.port).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 50,
				BurstSize:         100,
			},
		},
		Database: DatabaseConfig{
			MaxConns:        25,
			MinConns:        2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			KeyPrefix:    "npb",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
			SamplingRate: 1.0,
			BatchTimeout: 5 * time.Second,
		},
		Generation: GenerationConfig{
			MaxBatchSize: 10000,
			MaxRecords:   50000,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = "configs/config.yaml"
		// The default file is optional.
		_ = k.Load(file.Provider(path), yaml.Parser())
	} else if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider("NPB_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "NPB_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("database enabled but no URL configured")
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return fmt.Errorf("redis enabled but no address configured")
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("sampling rate %f outside [0,1]", c.Telemetry.SamplingRate)
	}
	if c.Generation.MaxBatchSize <= 0 {
		return fmt.Errorf("generation max_batch_size must be positive")
	}
	return nil
}
