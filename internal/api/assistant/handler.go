package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/deanhq/portfolio-assistant/internal/pkg/logger"
	"github.com/deanhq/portfolio-assistant/internal/pkg/response"
	"github.com/deanhq/portfolio-assistant/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   AssistantUsecase
	cache     AnswerCache
	prompts   []string
	validator *validator.Validator
}

func NewHandler(usecase AssistantUsecase, cache AnswerCache, prompts []string, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		cache:     cache,
		prompts:   prompts,
		validator: validator,
	}
}

// Ask handles POST /api/ask - answer one visitor question
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateAsk(&req); err != nil {
		ctxzap.Warn(ctx, "request validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	// Warmed answers only apply to fresh conversations: any history makes
	// the question context dependent.
	if len(req.ConversationHistory) == 0 && h.cache != nil {
		if answer, ok := h.cache.Lookup(req.Query); ok {
			ctxzap.Debug(ctx, "serving warmed answer")
			response.Success(w, entity.AskResponse{Answer: answer})
			return
		}
	}

	answer, err := h.usecase.Answer(ctx, req.Query, req.ConversationHistory)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, entity.AskResponse{Answer: answer})
}

// Prompts handles GET /api/prompts - suggested prompts with warmup state
func (h *Handler) Prompts(w http.ResponseWriter, r *http.Request) {
	prompts := make([]entity.SuggestedPrompt, 0, len(h.prompts))
	for _, p := range h.prompts {
		warmed := h.cache != nil && h.cache.Warmed(p)
		prompts = append(prompts, entity.SuggestedPrompt{Prompt: p, Warmed: warmed})
	}

	response.Success(w, prompts)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyQuery),
		errors.Is(err, entity.ErrInvalidRole),
		errors.Is(err, entity.ErrMissingField):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrUpstream):
		// The provider-specific detail stays in the logs only.
		ctxzap.Error(ctx, "upstream failure answering question", zap.Error(err))
		response.Error(w, http.StatusBadGateway, "the assistant is temporarily unavailable")
	default:
		ctxzap.Error(ctx, "failed to answer question", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
