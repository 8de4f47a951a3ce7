package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/pitchside/internal/config"
)

// Generator is the one operation the orchestrator needs from a provider.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func NewProvider(ctx context.Context, cfg *config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://api.openai.com",
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	case "openrouter":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://openrouter.ai/api",
			APIKey:     cfg.OpenRouterAPIKey,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	case "ollama":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil
	case "custom":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.CustomBaseURL,
			APIKey:     cfg.CustomAPIKey,
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
