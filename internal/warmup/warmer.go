package warmup

import (
	"context"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/deanhq/portfolio-assistant/internal/config"
	"github.com/deanhq/portfolio-assistant/internal/entity"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Answerer is the part of the orchestrator the warmer needs.
type Answerer interface {
	Answer(ctx context.Context, query string, history []entity.ConversationTurn) (string, error)
}

// Warmer precomputes answers for the suggested prompts shown on the
// portfolio page and keeps them in a TTL cache. The cache is advisory:
// the pipeline itself never reads it, and a failed prompt is simply
// skipped. Retries here live outside the per-request pipeline, which
// never retries.
type Warmer struct {
	answerer Answerer
	cache    *gocache.Cache
	cfg      config.WarmupConfig
	prompts  []string
	logger   *zap.Logger
}

func NewWarmer(answerer Answerer, prompts []string, cfg config.WarmupConfig, logger *zap.Logger) *Warmer {
	return &Warmer{
		answerer: answerer,
		cache:    gocache.New(cfg.AnswerTTL, cfg.AnswerTTL/2),
		cfg:      cfg,
		prompts:  prompts,
		logger:   logger,
	}
}

// Run warms every configured prompt sequentially. Intended to run in a
// background goroutine at startup.
func (w *Warmer) Run(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("answer warmup disabled")
		return
	}

	for _, prompt := range w.prompts {
		if ctx.Err() != nil {
			return
		}

		answer, err := retry.DoWithData(func() (string, error) {
			promptCtx, cancel := context.WithTimeout(ctx, w.cfg.PromptTimeout)
			defer cancel()
			return w.answerer.Answer(promptCtx, prompt, nil)
		}, append(w.cfg.Retry.ToRetryOptions(), retry.Context(ctx))...)
		if err != nil {
			w.logger.Warn("failed to warm prompt, skipping",
				zap.String("prompt", prompt),
				zap.Error(err),
			)
			continue
		}

		w.cache.Set(normalize(prompt), answer, gocache.DefaultExpiration)
		w.logger.Info("prompt warmed", zap.String("prompt", prompt))
	}
}

// Lookup returns the warmed answer for a query, matching the suggested
// prompt case-insensitively.
func (w *Warmer) Lookup(query string) (string, bool) {
	v, ok := w.cache.Get(normalize(query))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Warmed reports whether a prompt currently has a cached answer.
func (w *Warmer) Warmed(prompt string) bool {
	_, ok := w.cache.Get(normalize(prompt))
	return ok
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
