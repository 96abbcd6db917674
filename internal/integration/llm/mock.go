package llm

import (
	"context"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector returns a canned answer for local development. It never
// signals insufficient context, so the refinement path stays idle.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (m *MockConnector) Complete(ctx context.Context, system string, history []entity.ConversationTurn, user string) (string, error) {
	ctxzap.Debug(ctx, "[MOCK] chat completion", zap.Int("history_turns", len(history)))

	return "Dean is a full-stack engineer with deep experience in Go, TypeScript and React. " +
		"He most recently led the rebuild of a real-time analytics dashboard serving 40k daily users. (MOCK)", nil
}

func (m *MockConnector) Embed(ctx context.Context, text string) ([]float32, error) {
	ctxzap.Debug(ctx, "[MOCK] embedding")

	return []float32{0.1, 0.2, 0.3}, nil
}
