package assistant

import (
	"context"

	"github.com/deanhq/portfolio-assistant/internal/entity"
)

// VectorSearcher is a similarity-search backend. Implementations return at
// most topK matches in the store's relevance order (descending score) and
// must not retry failures internally.
type VectorSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error)
}

// Generator produces one chat completion from a system instruction, prior
// conversation turns and a final user prompt. The generated text is
// returned verbatim.
type Generator interface {
	Complete(ctx context.Context, system string, history []entity.ConversationTurn, user string) (string, error)
}
