package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/pitchside/pkg/log"
)

type FeedsConfig struct {
	// BaseURL of the fixtures/odds feed service. Empty disables enrichment
	// and retrieval degrades to text-only.
	BaseURL  string        `env:"FEEDS_BASE_URL"`
	APIKey   string        `env:"FEEDS_API_KEY"`
	Timeout  time.Duration `env:"FEEDS_TIMEOUT" envDefault:"2s"`
	CacheTTL time.Duration `env:"FEEDS_CACHE_TTL" envDefault:"10m"`
}

func NewFeedsConfig(ctx context.Context) *FeedsConfig {
	c := &FeedsConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Feeds config")
	}
	return c
}

func (c FeedsConfig) Enabled() bool {
	return c.BaseURL != ""
}
