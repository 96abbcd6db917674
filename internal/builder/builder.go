package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/deanhq/portfolio-assistant/internal/api"
	assistantapi "github.com/deanhq/portfolio-assistant/internal/api/assistant"
	"github.com/deanhq/portfolio-assistant/internal/config"
	"github.com/deanhq/portfolio-assistant/internal/integration/llm"
	"github.com/deanhq/portfolio-assistant/internal/integration/vectorstore"
	"github.com/deanhq/portfolio-assistant/internal/pkg/logger"
	"github.com/deanhq/portfolio-assistant/internal/pkg/validator"
	"github.com/deanhq/portfolio-assistant/internal/repository"
	"github.com/deanhq/portfolio-assistant/internal/telegram"
	"github.com/deanhq/portfolio-assistant/internal/usecase/assistant"
	"github.com/deanhq/portfolio-assistant/internal/warmup"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	lgr, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	lgr.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("vector_backend", cfg.VectorBackend),
	)

	db, usecase, err := buildUsecase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	warmer := warmup.NewWarmer(usecase, cfg.SuggestedPrompts, cfg.WarmupCfg, lgr)

	handler := assistantapi.NewHandler(usecase, warmer, cfg.SuggestedPrompts, validator.NewValidator())
	lgr.Info("API handlers initialized")

	router := api.SetupRouter(handler, lgr)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		warmer: warmer,
		logger: lgr,
	}, nil
}

// BuildTelegramBot creates and initializes the Telegram bot
func BuildTelegramBot() (*telegram.Bot, *zap.Logger, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	lgr, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.TelegramCfg.BotToken == "" {
		return nil, nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the bot")
	}

	lgr.Info("Building Telegram bot",
		zap.String("environment", cfg.Environment),
	)

	_, usecase, err := buildUsecase(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, err
	}

	bot, err := telegram.NewBot(&cfg.TelegramCfg, usecase, lgr)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	return bot, lgr, nil
}

// buildUsecase wires the retrieval backend and the model client behind
// the orchestrator. The pool is non-nil only for the pgvector backend.
func buildUsecase(ctx context.Context, cfg *config.Config, lgr *zap.Logger) (*pgxpool.Pool, *assistant.Usecase, error) {
	var store assistant.VectorSearcher
	var generator assistant.Generator
	var db *pgxpool.Pool

	if cfg.EnableMocks {
		lgr.Info("Using mock connectors for external services")
		store = vectorstore.NewMockConnector(lgr)
		generator = llm.NewMockConnector(lgr)
		return nil, assistant.NewUsecase(store, generator, lgr), nil
	}

	llmConnector := llm.NewConnector(cfg.LLMCfg, lgr)
	generator = llmConnector

	switch cfg.VectorBackend {
	case config.VectorBackendPgvector:
		var err error
		db, err = setupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, nil, fmt.Errorf("setup database: %w", err)
		}

		lgr.Info("Running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}

		store = repository.NewChunkPostgres(db, llmConnector)
	default:
		store = vectorstore.NewConnector(cfg.VectorStoreCfg, lgr)
	}

	return db, assistant.NewUsecase(store, generator, lgr), nil
}
