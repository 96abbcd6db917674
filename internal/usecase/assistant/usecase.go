package assistant

import (
	"context"
	"strings"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Retrieval and context policy. These are fixed product decisions, not
// tunables: changing any of them changes the answer contract.
const (
	// minSimilarityScore is the lowest vector-store score a chunk may have
	// and still be shown to the model.
	minSimilarityScore = 0.70
	// initialTopK is the match count requested for the first retrieval.
	initialTopK = 5
	// refinedTopK is the match count requested per refined query.
	refinedTopK = 2
	// maxRefinedQueries caps how many refined search queries are run.
	maxRefinedQueries = 2
	// maxContextChunks caps the merged context for any single answer.
	maxContextChunks = 5
	// maxHistoryTurns bounds how much caller-supplied conversation history
	// is forwarded to the model.
	maxHistoryTurns = 5
)

// Usecase answers visitor questions about Dean with retrieval-augmented
// generation: retrieve, answer from context only, and if the model signals
// insufficient context, search again with refined queries and answer once
// more from the merged context.
type Usecase struct {
	store     VectorSearcher
	generator Generator
	logger    *zap.Logger
}

func NewUsecase(store VectorSearcher, generator Generator, logger *zap.Logger) *Usecase {
	return &Usecase{
		store:     store,
		generator: generator,
		logger:    logger,
	}
}

// Answer runs the full pipeline for one question. It returns
// entity.ErrEmptyQuery before any external call when the query is blank,
// and an entity.UpstreamError when the vector store or the model fails.
// No partial answer is ever returned.
func (uc *Usecase) Answer(ctx context.Context, query string, history []entity.ConversationTurn) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", entity.ErrEmptyQuery
	}

	history = entity.LastTurns(history, maxHistoryTurns)

	initialContext, err := uc.retrieve(ctx, query, initialTopK)
	if err != nil {
		return "", err
	}

	ctxzap.Debug(ctx, "initial retrieval done", zap.Int("chunk_count", len(initialContext)))

	initialResponse, err := uc.generator.Complete(ctx, groundingSystemPrompt, history, answerUserPrompt(initialContext, query))
	if err != nil {
		return "", &entity.UpstreamError{Stage: "initial generation", Err: err}
	}

	need, insufficient := needsMoreInformation(initialResponse)
	if !insufficient {
		return initialResponse, nil
	}

	ctxzap.Info(ctx, "context insufficient, refining search", zap.String("stated_need", need))

	refinedQueries, err := uc.refineQueries(ctx, query, need)
	if err != nil {
		return "", err
	}

	extra, err := uc.retrieveRefined(ctx, refinedQueries)
	if err != nil {
		return "", err
	}

	merged := mergeContext(initialContext, extra, maxContextChunks)

	ctxzap.Debug(ctx, "refined retrieval merged",
		zap.Int("refined_queries", len(refinedQueries)),
		zap.Int("new_chunks", len(extra)),
		zap.Int("merged_count", len(merged)),
	)

	// The final generation runs even when refinement produced no usable
	// queries: once escalation triggers, the caller always gets an answer
	// built with the refined-context instruction.
	finalResponse, err := uc.generator.Complete(ctx, refinedSystemPrompt, history, answerUserPrompt(merged, query))
	if err != nil {
		return "", &entity.UpstreamError{Stage: "final generation", Err: err}
	}

	return finalResponse, nil
}

// retrieve asks the vector store for topK matches and keeps only those at
// or above the similarity floor, preserving the store's relevance order.
func (uc *Usecase) retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	matches, err := uc.store.Search(ctx, query, topK)
	if err != nil {
		return nil, &entity.UpstreamError{Stage: "vector search", Err: err}
	}

	chunks := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Score >= minSimilarityScore {
			chunks = append(chunks, m.Text)
		}
	}
	return chunks, nil
}

// refineQueries asks the model to turn the stated information need into at
// most maxRefinedQueries targeted search queries. Output that parses into
// zero usable lines is not an error: the pipeline degrades to an empty
// query list.
func (uc *Usecase) refineQueries(ctx context.Context, query, need string) ([]string, error) {
	raw, err := uc.generator.Complete(ctx, refinementSystemPrompt, nil, refinementUserPrompt(query, need))
	if err != nil {
		return nil, &entity.UpstreamError{Stage: "query refinement", Err: err}
	}

	queries := parseRefinedQueries(raw, maxRefinedQueries)
	if len(queries) == 0 {
		ctxzap.Warn(ctx, "refinement output had no usable queries", zap.String("raw", raw))
	}
	return queries, nil
}

// retrieveRefined fans out one retrieval per refined query and joins the
// results in query order, so the later merge is deterministic regardless
// of which retrieval finishes first.
func (uc *Usecase) retrieveRefined(ctx context.Context, queries []string) ([]string, error) {
	results := make([][]string, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			chunks, err := uc.retrieve(gctx, q, refinedTopK)
			if err != nil {
				return err
			}
			results[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []string
	for _, chunks := range results {
		flat = append(flat, chunks...)
	}
	return flat, nil
}

// mergeContext folds initial and refinement chunks into a fresh slice with
// set semantics on exact text: initial chunks first in their retrieval
// order, then new refinement chunks in query order, stopping at cap.
func mergeContext(initial, extra []string, limit int) []string {
	merged := make([]string, 0, limit)
	seen := make(map[string]struct{}, limit)

	for _, chunk := range append(append([]string{}, initial...), extra...) {
		if len(merged) >= limit {
			break
		}
		if _, dup := seen[chunk]; dup {
			continue
		}
		seen[chunk] = struct{}{}
		merged = append(merged, chunk)
	}
	return merged
}
