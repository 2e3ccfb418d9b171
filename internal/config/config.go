package config

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server ServerConfig
	LLM    LLMConfig
	Farm   FarmConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8000"`
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
}

// LLMConfig configures the hosted reasoning model. APIKey is deliberately
// not required: when it is empty the service still starts, with /ask
// answering 503 until credentials are provided.
type LLMConfig struct {
	APIKey      string        `envconfig:"DEEPSEEK_API_KEY"`
	APIEndpoint string        `envconfig:"DEEPSEEK_ENDPOINT" default:"https://api.deepseek.com"`
	Model       string        `envconfig:"DEEPSEEK_MODEL" default:"deepseek-chat"`
	MaxTokens   int64         `envconfig:"LLM_MAX_TOKENS" default:"1000"`
	Temperature float64       `envconfig:"LLM_TEMPERATURE" default:"0"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"90s"`
}

// FarmConfig configures the outbound farm-monitoring API. Source selects
// the integration: "public" hits the unauthenticated /dapi endpoint,
// "legacy" runs the CSRF + session login flow some deployments still need.
type FarmConfig struct {
	BaseURL  string        `envconfig:"FARM_API_BASE_URL"`
	Source   string        `envconfig:"FARM_API_SOURCE" default:"public"`
	Username string        `envconfig:"FARM_USERNAME"`
	Password string        `envconfig:"FARM_PASSWORD"`
	Timeout  time.Duration `envconfig:"FARM_API_TIMEOUT" default:"15s"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully")
	return &cfg, nil
}
