package vectorstore

import (
	"context"
	"net/http"

	"github.com/deanhq/portfolio-assistant/internal/config"
	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/deanhq/portfolio-assistant/internal/integration/common"
	pkghttp "github.com/deanhq/portfolio-assistant/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector is a client for a hosted query-by-text vector store (Upstash
// Vector style REST API): the store embeds the query itself and returns
// the nearest ingested chunks with cosine similarity scores.
type Connector struct {
	config    config.VectorStoreConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.VectorStoreConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

type queryRequest struct {
	Data            string `json:"data"`
	TopK            int    `json:"topK"`
	IncludeMetadata bool   `json:"includeMetadata"`
	IncludeData     bool   `json:"includeData"`
}

type queryMatch struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Data     string            `json:"data"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type queryResponse struct {
	Result []queryMatch `json:"result"`
}

// Search returns the topK nearest chunks in the store's relevance order.
// Failures propagate to the caller; there is no retry here.
func (c *Connector) Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error) {
	ctxzap.Debug(ctx, "querying vector store", zap.Int("top_k", topK))

	req := queryRequest{
		Data:            query,
		TopK:            topK,
		IncludeMetadata: true,
		IncludeData:     true,
	}

	var resp queryResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, c.config.QueryEndpoint, req, &resp); err != nil {
		return nil, err
	}

	chunks := make([]entity.ScoredChunk, 0, len(resp.Result))
	for _, match := range resp.Result {
		chunks = append(chunks, entity.ScoredChunk{
			Text:     match.Data,
			Score:    match.Score,
			Metadata: match.Metadata,
		})
	}

	ctxzap.Debug(ctx, "vector store query done", zap.Int("match_count", len(chunks)))
	return chunks, nil
}
