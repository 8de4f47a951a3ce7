package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/pitchside/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"PITCHSIDE_RUNTIME_PATH" envDefault:".pitchside"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableHTTP     bool `env:"ENABLE_HTTP" envDefault:"true"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"false"`

	// Default persona for transports that do not carry a selection
	DefaultPersona string `env:"DEFAULT_PERSONA" envDefault:"terrace-legend"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "pitchside.db")
}
