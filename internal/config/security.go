package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/pitchside/pkg/log"
)

type SecurityConfig struct {
	// MaxQueryLen bounds the sanitized query length accepted per turn.
	MaxQueryLen int `env:"MAX_QUERY_LEN" envDefault:"2000"`
}

func NewSecurityConfig(ctx context.Context) *SecurityConfig {
	c := &SecurityConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Security config")
	}
	return c
}
