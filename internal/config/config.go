package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/deanhq/portfolio-assistant/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Vector store backends
const (
	VectorBackendUpstash  = "upstash"
	VectorBackendPgvector = "pgvector"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration: replace both external services with canned fakes
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Retrieval backend: upstash (hosted query-by-text store) or pgvector
	VectorBackend string `env:"VECTOR_BACKEND" envDefault:"upstash"`

	// Database configuration (pgvector backend only)
	DatabaseURL         string        `env:"DATABASE_URL"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configurations
	VectorStoreCfg VectorStoreConfig `envPrefix:"VECTOR_"`
	LLMCfg         LLMConfig         `envPrefix:"LLM_"`

	// Warmup cache configuration
	WarmupCfg WarmupConfig `envPrefix:"WARMUP_"`

	// Telegram bot configuration (optional surface)
	TelegramCfg TelegramConfig `envPrefix:"TELEGRAM_"`

	// Suggested prompts shown on the portfolio page (loaded from JSON file)
	SuggestedPrompts []string

	// Environment (set from flag, not from env var)
	Environment string
}

// VectorStoreConfig configures the hosted query-by-text vector store.
type VectorStoreConfig struct {
	HTTPClientConfig
	QueryEndpoint string `env:"QUERY_ENDPOINT" envDefault:"/query-data"`
}

// LLMConfig configures the chat-completion and embedding client.
type LLMConfig struct {
	APIKey         string        `env:"API_KEY"`
	BaseURL        string        `env:"BASE_URL"` // optional OpenAI-compatible gateway
	ChatModel      string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string        `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	RequestTimeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// WarmupConfig configures startup precomputation of suggested-prompt answers.
type WarmupConfig struct {
	Enabled       bool                 `env:"ENABLED" envDefault:"true"`
	AnswerTTL     time.Duration        `env:"ANSWER_TTL" envDefault:"12h"`
	PromptTimeout time.Duration        `env:"PROMPT_TIMEOUT" envDefault:"90s"`
	Retry         pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken        string        `env:"BOT_TOKEN"`
	UpdateTimeout   int           `env:"UPDATE_TIMEOUT" envDefault:"30"`
	HistoryTTL      time.Duration `env:"HISTORY_TTL" envDefault:"30m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

// suggestedPrompts represents the structure of suggested_prompts.json
type suggestedPrompts struct {
	Prompts []string `json:"prompts"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := loadSuggestedPrompts(cfg); err != nil {
		return nil, fmt.Errorf("load suggested prompts: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.VectorBackend != VectorBackendUpstash && cfg.VectorBackend != VectorBackendPgvector {
		return fmt.Errorf("VECTOR_BACKEND must be %q or %q, got %q",
			VectorBackendUpstash, VectorBackendPgvector, cfg.VectorBackend)
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		return fmt.Errorf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns)
	}
	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns)
	}

	// Mock mode needs no external credentials
	if cfg.EnableMocks {
		return nil
	}

	if cfg.LLMCfg.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required unless ENABLE_MOCKS=true")
	}

	switch cfg.VectorBackend {
	case VectorBackendUpstash:
		if cfg.VectorStoreCfg.Url == "" {
			return fmt.Errorf("VECTOR_SERVICE_URL is required for the upstash backend")
		}
	case VectorBackendPgvector:
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the pgvector backend")
		}
	}

	return nil
}

var defaultSuggestedPrompts = []string{
	"What are Dean's main skills?",
	"Tell me about Dean's most interesting project",
	"What is Dean's professional background?",
	"What technologies does Dean work with?",
}

func loadSuggestedPrompts(cfg *Config) error {
	promptsPath := filepath.Join("internal", "config", "suggested_prompts.json")

	if _, err := os.Stat(promptsPath); os.IsNotExist(err) {
		fmt.Printf("Warning: suggested prompts file not found at %s, using default prompts\n", promptsPath)
		cfg.SuggestedPrompts = defaultSuggestedPrompts
		return nil
	}

	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return fmt.Errorf("read suggested prompts file: %w", err)
	}

	var promptsData suggestedPrompts
	if err := json.Unmarshal(data, &promptsData); err != nil {
		return fmt.Errorf("parse suggested prompts JSON: %w", err)
	}

	if len(promptsData.Prompts) == 0 {
		return fmt.Errorf("suggested prompts file contains no prompts: %s", promptsPath)
	}

	cfg.SuggestedPrompts = promptsData.Prompts
	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
