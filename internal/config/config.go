package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the game reads from the environment.
type Config struct {
	OpenAIKey   string `env:"OPENAI_API_KEY"`
	Model       string `env:"STORYWORLD_MODEL" envDefault:"gpt-5-mini"`
	Debug       bool   `env:"DEBUG"`
	DebugLog    string `env:"STORYWORLD_DEBUG_LOG" envDefault:"debug.log"`
	FictionPath string `env:"STORYWORLD_FICTION"`
	ActionLog   string `env:"STORYWORLD_ACTION_LOG" envDefault:"./actions.db"`

	Tracing Tracing
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled     bool              `env:"OTEL_TRACES_ENABLED"`
	Endpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"http://localhost:4318"`
	ServiceName string            `env:"OTEL_SERVICE_NAME" envDefault:"storyworld"`
	Environment string            `env:"ENVIRONMENT" envDefault:"development"`
	Headers     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS" envSeparator:"," envKeyValSeparator:"="`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// LLMEnabled reports whether autonomous actors may use a language model.
func (c Config) LLMEnabled() bool {
	return c.OpenAIKey != ""
}
