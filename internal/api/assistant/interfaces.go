package assistant

import (
	"context"

	"github.com/deanhq/portfolio-assistant/internal/entity"
)

type AssistantUsecase interface {
	Answer(ctx context.Context, query string, history []entity.ConversationTurn) (string, error)
}

// AnswerCache is the advisory warmed-answer cache for suggested prompts.
// It is consulted only at the HTTP boundary, never by the pipeline.
type AnswerCache interface {
	Lookup(query string) (string, bool)
	Warmed(prompt string) bool
}
