package llm

import (
	"time"

	"github.com/sandevgo/pitchside/internal/config"
)

func testLLMConfig(provider string) *config.LLMConfig {
	return &config.LLMConfig{
		Provider:      provider,
		Model:         "test-model",
		OllamaBaseURL: "http://localhost:11434",
		CustomBaseURL: "http://localhost:9999",
		Timeout:       time.Second,
	}
}
