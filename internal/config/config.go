package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the chat service.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-server"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// DatabaseURL switches the store to postgres when set. Empty keeps the
	// JSON file backend under DataDir.
	DatabaseURL    string        `env:"DATABASE_URL" envDefault:""`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	DataDir    string `env:"DATA_DIR" envDefault:"data"`
	UploadsDir string `env:"UPLOADS_DIR" envDefault:"uploads"`

	OpenRouterAPIKey  string        `env:"OPENROUTER_API_KEY" envDefault:""`
	OpenRouterBaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterReferer string        `env:"OPENROUTER_REFERER" envDefault:"http://localhost:8080"`
	OpenRouterTitle   string        `env:"OPENROUTER_TITLE" envDefault:"Chat Server"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY" envDefault:""`
	OllamaBaseURL     string        `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"120s"`

	WorkerPoolSize  int           `env:"WORKER_POOL_SIZE" envDefault:"8"`
	WorkerJobBuffer int           `env:"WORKER_JOB_BUFFER" envDefault:"64"`
	WorkerDrainWait time.Duration `env:"WORKER_DRAIN_WAIT" envDefault:"30s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		return nil, fmt.Errorf("DATA_DIR must not be empty")
	}
	if strings.TrimSpace(cfg.UploadsDir) == "" {
		return nil, fmt.Errorf("UPLOADS_DIR must not be empty")
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 8
	}
	if cfg.WorkerJobBuffer <= 0 {
		cfg.WorkerJobBuffer = 64
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 120 * time.Second
	}

	return cfg, nil
}

// UsePostgres reports whether the postgres store backend is configured.
func (c *Config) UsePostgres() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
