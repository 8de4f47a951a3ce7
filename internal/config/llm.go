package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/pitchside/pkg/log"
)

type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openrouter"`
	Model    string `env:"LLM_MODEL" envDefault:"openai/gpt-4o-mini"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	CustomBaseURL    string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomAPIKey     string `env:"CUSTOM_OPENAI_API_KEY"`

	// Hard ceiling for a single generation call. One attempt per turn,
	// no retries.
	Timeout time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
