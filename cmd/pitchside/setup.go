package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/internal/providers/feeds"
	"github.com/sandevgo/pitchside/internal/providers/llm"
	"github.com/sandevgo/pitchside/internal/retrieval"
	"github.com/sandevgo/pitchside/internal/service/chat"
	"github.com/sandevgo/pitchside/internal/service/persona"
	"github.com/sandevgo/pitchside/internal/storage/sqlite"
	"github.com/sandevgo/pitchside/internal/transport/cli"
	"github.com/sandevgo/pitchside/internal/transport/httpapi"
	"github.com/sandevgo/pitchside/internal/transport/telegram"
	"github.com/sandevgo/pitchside/pkg/log"
	"github.com/sandevgo/pitchside/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	retrievalCfg := config.NewRetrievalConfig(ctx)
	securityCfg := config.NewSecurityConfig(ctx)
	feedsCfg := config.NewFeedsConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. Personas
	registry, err := persona.NewRegistry(persona.Builtin())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build persona registry")
	}

	// 4. Feeds enrichment (optional)
	var resolver retrieval.TeamResolver
	var fixtures chat.FixtureSource
	if feedsCfg.Enabled() {
		client := feeds.NewClient(feedsCfg)
		resolver = client
		fixtures = client
	}

	// 5. Retrieval
	tokenizer, err := retrieval.NewTiktokenTokenizer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tokenizer")
	}
	engine := retrieval.NewEngine(sqlite.NewCorpusRepo(db), resolver, retrievalCfg.TopK)

	// 6. Generation
	generator, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	// 7. Chat pipeline
	orch := chat.NewOrchestrator(
		chat.Config{
			RetrievalTimeout:  retrievalCfg.Timeout,
			GenerationTimeout: llmCfg.Timeout,
			ContextBudget:     retrievalCfg.ContextBudget,
			MaxQueryLen:       securityCfg.MaxQueryLen,
		},
		registry,
		sqlite.NewSessionsRepo(db),
		sqlite.NewViolationsRepo(db),
		sqlite.NewTurnsRepo(db),
		engine,
		tokenizer,
		generator,
		fixtures,
	)

	// 8. Transports
	transports, err := initTransports(ctx, appCfg, orch, registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	orch *chat.Orchestrator,
	registry *persona.Registry,
) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableHTTP {
		httpCfg := config.NewHTTPConfig(ctx)
		services = append(services, httpapi.NewServer(httpCfg, orch, registry))
	}

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, orch, registry, cfg.DefaultPersona)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		repl, err := cli.NewReadLine(orch, registry, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, repl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}

func openDB(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}
