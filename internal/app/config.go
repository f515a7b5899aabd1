package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/studyplan-backend/internal/platform/envutil"
)

const (
	configPathEnv     = "PLANNER_CONFIG_PATH"
	defaultConfigPath = "config/config.yaml"
)

type OpenAIConfig struct {
	BaseURL          string        `yaml:"base_url"`
	Model            string        `yaml:"model"`
	MaxTokens        int           `yaml:"max_tokens"`
	Temperature      float64       `yaml:"temperature"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	MaxAutoRetries   int           `yaml:"max_auto_retries"`
	TransportRetries int           `yaml:"transport_retries"`
	BackoffFactor    float64       `yaml:"backoff_factor"`

	// APIKey is read from OPENAI_API_KEY only.
	APIKey string `yaml:"-"`
}

type DBConfig struct {
	// Driver is "postgres", "sqlite" or "none".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"-"`
	DB       int           `yaml:"db"`
	PlanTTL  time.Duration `yaml:"plan_ttl"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
	Headers     string  `yaml:"-"`
}

type Config struct {
	LogMode      string `yaml:"log_mode"`
	Port         string `yaml:"port"`
	Environment  string `yaml:"environment"`
	ArtifactsDir string `yaml:"artifacts_dir"`
	// MetricsEnabled exposes /metrics and records API and completion series.
	MetricsEnabled bool         `yaml:"metrics_enabled"`
	OpenAI         OpenAIConfig `yaml:"openai"`
	DB             DBConfig     `yaml:"db"`
	Redis          RedisConfig  `yaml:"redis"`
	Otel           OtelConfig   `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		LogMode:      "development",
		Port:         "8080",
		Environment:  "local",
		ArtifactsDir: "artifacts",
		OpenAI: OpenAIConfig{
			BaseURL:          "https://api.openai.com",
			Model:            "gpt-4o-mini",
			MaxTokens:        1200,
			Temperature:      0.2,
			ConnectTimeout:   10 * time.Second,
			ReadTimeout:      180 * time.Second,
			MaxAutoRetries:   3,
			TransportRetries: 4,
			BackoffFactor:    1.5,
		},
		DB: DBConfig{Driver: "postgres"},
		Redis: RedisConfig{
			PlanTTL: 6 * time.Hour,
		},
		Otel: OtelConfig{SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, the optional YAML file and the environment, in
// that order. A missing file is not an error unless PLANNER_CONFIG_PATH names it.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path := envutil.String(configPathEnv, "")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)
	cfg.ArtifactsDir = envutil.String("ARTIFACTS_DIR", cfg.ArtifactsDir)

	o := &cfg.OpenAI
	o.APIKey = envutil.String("OPENAI_API_KEY", "")
	o.BaseURL = envutil.String("OPENAI_BASE_URL", o.BaseURL)
	o.Model = envutil.String("OPENAI_MODEL", o.Model)
	o.MaxTokens = envutil.Int("OPENAI_MAX_TOKENS", o.MaxTokens)
	o.Temperature = envutil.Float("OPENAI_TEMPERATURE", o.Temperature)
	o.ConnectTimeout = envutil.Seconds("OPENAI_CONNECT_TIMEOUT_SECONDS", o.ConnectTimeout)
	o.ReadTimeout = envutil.Seconds("OPENAI_READ_TIMEOUT_SECONDS", o.ReadTimeout)
	o.MaxAutoRetries = envutil.Int("OPENAI_MAX_AUTO_RETRIES", o.MaxAutoRetries)
	o.TransportRetries = envutil.Int("OPENAI_TRANSPORT_RETRIES", o.TransportRetries)
	o.BackoffFactor = envutil.Float("OPENAI_BACKOFF_FACTOR", o.BackoffFactor)

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.DSN = envutil.String("DB_DSN", cfg.DB.DSN)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PlanTTL = envutil.Seconds("PLAN_CACHE_TTL_SECONDS", cfg.Redis.PlanTTL)

	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite", "none":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres, sqlite or none, got %q", c.DB.Driver)
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("OPENAI_MAX_TOKENS must be positive")
	}
	if c.OpenAI.MaxAutoRetries < 0 || c.OpenAI.TransportRetries < 0 {
		return fmt.Errorf("retry counts must not be negative")
	}
	return nil
}
