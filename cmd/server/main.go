// cmd/server/main.go
package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/gridsphere/kesan/internal/agent"
	"github.com/gridsphere/kesan/internal/config"
	"github.com/gridsphere/kesan/internal/farm"
	"github.com/gridsphere/kesan/internal/llm"
	"github.com/gridsphere/kesan/internal/server"
	"github.com/gridsphere/kesan/internal/tools"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// A broken orchestrator must not take the whole service down: without
	// it the server still starts and /ask answers 503.
	var asker server.Asker
	if a, err := buildAgent(cfg); err != nil {
		slog.Error("failed to initialize agent, /ask will return 503", "error", err)
	} else {
		asker = a
		slog.Info("agent initialized successfully")
	}

	srv := server.New(*cfg, asker)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func buildAgent(cfg *config.Config) (*agent.Agent, error) {
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY is not set")
	}

	source, err := farm.NewSource(&cfg.Farm)
	if err != nil {
		return nil, fmt.Errorf("failed to create farm reading source: %w", err)
	}

	provider, err := llm.NewOpenAI(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	registry := tools.NewRegistry(tools.NewReadingTool(source))
	return agent.New(provider, registry), nil
}
