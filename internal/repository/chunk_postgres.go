package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Embedder turns query text into the vector the chunks table is indexed
// with. The LLM connector provides it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkPostgres is a pgvector-backed similarity search over ingested
// portfolio chunks. It implements the same contract as the hosted store
// connector: topK nearest matches, cosine score, relevance order.
type ChunkPostgres struct {
	db       *pgxpool.Pool
	embedder Embedder
}

func NewChunkPostgres(db *pgxpool.Pool, embedder Embedder) *ChunkPostgres {
	return &ChunkPostgres{
		db:       db,
		embedder: embedder,
	}
}

const searchChunksQuery = `
SELECT text, metadata, 1 - (embedding <=> $1::vector) AS score
FROM chunks
ORDER BY embedding <=> $1::vector
LIMIT $2`

func (r *ChunkPostgres) Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := r.db.Query(ctx, searchChunksQuery, vectorLiteral(vector), topK)
	if err != nil {
		ctxzap.Error(ctx, "chunk search failed", zap.Error(err))
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var chunks []entity.ScoredChunk
	for rows.Next() {
		var (
			chunk    entity.ScoredChunk
			metadata []byte
		)
		if err := rows.Scan(&chunk.Text, &metadata, &chunk.Score); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("decode chunk metadata: %w", err)
			}
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}

	return chunks, nil
}

// vectorLiteral renders a pgvector input literal, e.g. [0.1,0.2,0.3].
func vectorLiteral(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
