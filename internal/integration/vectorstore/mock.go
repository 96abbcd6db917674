package vectorstore

import (
	"context"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector serves canned portfolio chunks for local development.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

var mockChunks = []entity.ScoredChunk{
	{
		Text:     "Dean is a full-stack engineer with eight years of experience building web applications in Go, TypeScript and React.",
		Score:    0.93,
		Metadata: map[string]string{"source": "resume"},
	},
	{
		Text:     "Dean led the rebuild of a real-time analytics dashboard, cutting page load time by 60% and serving 40k daily users.",
		Score:    0.88,
		Metadata: map[string]string{"source": "projects"},
	},
	{
		Text:     "Dean holds a BSc in Computer Science and regularly speaks at local meetups about distributed systems.",
		Score:    0.81,
		Metadata: map[string]string{"source": "about"},
	},
}

func (m *MockConnector) Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error) {
	ctxzap.Debug(ctx, "[MOCK] vector store query", zap.Int("top_k", topK))

	if topK > len(mockChunks) {
		topK = len(mockChunks)
	}
	return mockChunks[:topK], nil
}
