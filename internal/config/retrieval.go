package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/pitchside/pkg/log"
)

type RetrievalConfig struct {
	// TopK bounds how many ranked results a query may return.
	TopK int `env:"RETRIEVAL_TOP_K" envDefault:"8"`

	// ContextBudget is the token budget for the assembled grounding context.
	ContextBudget int `env:"CONTEXT_BUDGET_TOKENS" envDefault:"1200"`

	Timeout time.Duration `env:"RETRIEVAL_TIMEOUT" envDefault:"3s"`
}

func NewRetrievalConfig(ctx context.Context) *RetrievalConfig {
	c := &RetrievalConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Retrieval config")
	}
	return c
}
