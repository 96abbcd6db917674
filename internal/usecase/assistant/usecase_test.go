package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type searchCall struct {
	query string
	topK  int
}

type fakeStore struct {
	mu      sync.Mutex
	results map[string][]entity.ScoredChunk
	delays  map[string]time.Duration
	err     error
	calls   []searchCall
}

func (f *fakeStore) Search(ctx context.Context, query string, topK int) ([]entity.ScoredChunk, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{query: query, topK: topK})
	delay := f.delays[query]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type completeCall struct {
	system  string
	history []entity.ConversationTurn
	user    string
}

type fakeGenerator struct {
	responses []string
	failAt    int // 0-based call index that fails, -1 for never
	err       error
	calls     []completeCall
}

func newFakeGenerator(responses ...string) *fakeGenerator {
	return &fakeGenerator{responses: responses, failAt: -1}
}

func (f *fakeGenerator) Complete(ctx context.Context, system string, history []entity.ConversationTurn, user string) (string, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, completeCall{system: system, history: history, user: user})

	if f.failAt == idx {
		return "", f.err
	}
	if idx >= len(f.responses) {
		return "", errors.New("fakeGenerator: no scripted response left")
	}
	return f.responses[idx], nil
}

func chunk(text string, score float64) entity.ScoredChunk {
	return entity.ScoredChunk{Text: text, Score: score}
}

func TestAnswer_DirectAnswerWithoutEscalation(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"What are Dean's main skills?": {
			chunk("Dean writes Go.", 0.91),
			chunk("Dean writes TypeScript.", 0.82),
			chunk("Dean mentors juniors.", 0.71),
		},
	}}
	gen := newFakeGenerator("Dean's main skills are Go and TypeScript.")
	uc := NewUsecase(store, gen, zap.NewNop())

	answer, err := uc.Answer(context.Background(), "What are Dean's main skills?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Dean's main skills are Go and TypeScript.", answer)

	// One retrieval, one generation, no refinement.
	require.Equal(t, 1, store.callCount())
	assert.Equal(t, initialTopK, store.calls[0].topK)
	require.Len(t, gen.calls, 1)

	// All three chunks made it into the context block.
	user := gen.calls[0].user
	assert.Contains(t, user, "Dean writes Go.")
	assert.Contains(t, user, "Dean writes TypeScript.")
	assert.Contains(t, user, "Dean mentors juniors.")
	assert.Contains(t, user, "What are Dean's main skills?")
}

func TestAnswer_FiltersChunksBelowThreshold(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"q": {
			chunk("relevant passage", 0.74),
			chunk("irrelevant passage", 0.65),
		},
	}}
	gen := newFakeGenerator("answer")
	uc := NewUsecase(store, gen, zap.NewNop())

	_, err := uc.Answer(context.Background(), "q", nil)
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].user, "relevant passage")
	assert.NotContains(t, gen.calls[0].user, "irrelevant passage")
}

func TestAnswer_EmptyQueryRejectedBeforeExternalCalls(t *testing.T) {
	for _, query := range []string{"", "   ", "\n\t"} {
		store := &fakeStore{}
		gen := newFakeGenerator()
		uc := NewUsecase(store, gen, zap.NewNop())

		_, err := uc.Answer(context.Background(), query, nil)
		require.ErrorIs(t, err, entity.ErrEmptyQuery, "query %q", query)
		assert.Zero(t, store.callCount())
		assert.Empty(t, gen.calls)
	}
}

func TestAnswer_RefinementFlow(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"Tell me about quantum computing experience": {
			chunk("unrelated passage", 0.65), // filtered out
		},
		"quantum computing projects": {
			chunk("Dean built a QC simulator.", 0.88),
			chunk("Dean studied Qiskit.", 0.79),
		},
		"quantum research experience": {
			chunk("Dean co-authored a quantum paper.", 0.75),
		},
	}}
	gen := newFakeGenerator(
		"NEED_MORE_INFORMATION quantum computing background",
		"quantum computing projects\nquantum research experience",
		"Dean has hands-on quantum computing experience.",
	)
	uc := NewUsecase(store, gen, zap.NewNop())

	answer, err := uc.Answer(context.Background(), "Tell me about quantum computing experience", nil)
	require.NoError(t, err)
	assert.Equal(t, "Dean has hands-on quantum computing experience.", answer)

	// Initial retrieval plus one per refined query.
	require.Equal(t, 3, store.callCount())
	assert.Equal(t, initialTopK, store.calls[0].topK)
	assert.Equal(t, refinedTopK, store.calls[1].topK)
	assert.Equal(t, refinedTopK, store.calls[2].topK)

	// Initial generation, refinement generation, final generation.
	require.Len(t, gen.calls, 3)

	// The refinement call carries the stated need, no history.
	assert.Contains(t, gen.calls[1].user, "quantum computing background")
	assert.Empty(t, gen.calls[1].history)

	// Final context: first query's chunks before the second's.
	final := gen.calls[2].user
	assert.Contains(t, final, "Dean built a QC simulator.")
	assert.Contains(t, final, "Dean co-authored a quantum paper.")
	assert.Less(t,
		strings.Index(final, "Dean built a QC simulator."),
		strings.Index(final, "Dean co-authored a quantum paper."),
	)
	assert.NotContains(t, final, "unrelated passage")
}

func TestAnswer_NoSecondGenerationWithoutSentinel(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"q": {chunk("passage", 0.9)},
	}}
	gen := newFakeGenerator("plain answer, nothing missing")
	uc := NewUsecase(store, gen, zap.NewNop())

	answer, err := uc.Answer(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain answer, nothing missing", answer)
	assert.Len(t, gen.calls, 1)
	assert.Equal(t, 1, store.callCount())
}

func TestAnswer_UnparseableRefinementStillGeneratesFinalAnswer(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"q": {chunk("only passage", 0.9)},
	}}
	gen := newFakeGenerator(
		"NEED_MORE_INFORMATION details about certifications",
		"   \n \t ",
		"final answer from unchanged context",
	)
	uc := NewUsecase(store, gen, zap.NewNop())

	answer, err := uc.Answer(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "final answer from unchanged context", answer)

	// No refined retrievals ran, yet the final generation happened.
	assert.Equal(t, 1, store.callCount())
	require.Len(t, gen.calls, 3)
	assert.Equal(t, answerUserPrompt([]string{"only passage"}, "q"), gen.calls[2].user)
}

func TestAnswer_MergeIsIdempotentUnderDuplicateRefinements(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"q": {
			chunk("passage one", 0.9),
			chunk("passage two", 0.85),
		},
		"refined a": {chunk("passage one", 0.8)},
		"refined b": {chunk("passage two", 0.8)},
	}}
	gen := newFakeGenerator(
		"NEED_MORE_INFORMATION more detail",
		"refined a\nrefined b",
		"final",
	)
	uc := NewUsecase(store, gen, zap.NewNop())

	_, err := uc.Answer(context.Background(), "q", nil)
	require.NoError(t, err)

	require.Len(t, gen.calls, 3)
	// Merged context is exactly the initial context, same order.
	assert.Equal(t, answerUserPrompt([]string{"passage one", "passage two"}, "q"), gen.calls[2].user)
}

func TestAnswer_MergedContextIsCappedAndDeduplicated(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"q": {
			chunk("initial 1", 0.95),
			chunk("initial 2", 0.92),
			chunk("initial 3", 0.9),
			chunk("initial 4", 0.88),
		},
		"refined a": {
			chunk("initial 1", 0.9), // duplicate, skipped
			chunk("extra 1", 0.85),
		},
		"refined b": {
			chunk("extra 2", 0.82), // over the cap once extra 1 is in
			chunk("extra 3", 0.8),
		},
	}}
	gen := newFakeGenerator(
		"NEED_MORE_INFORMATION everything",
		"refined a\nrefined b",
		"final",
	)
	uc := NewUsecase(store, gen, zap.NewNop())

	_, err := uc.Answer(context.Background(), "q", nil)
	require.NoError(t, err)

	require.Len(t, gen.calls, 3)
	expected := answerUserPrompt([]string{"initial 1", "initial 2", "initial 3", "initial 4", "extra 1"}, "q")
	assert.Equal(t, expected, gen.calls[2].user)
}

func TestAnswer_RefinedResultsJoinInQueryOrder(t *testing.T) {
	// The first refined query is slower than the second; result order must
	// still follow query order, not completion order.
	store := &fakeStore{
		results: map[string][]entity.ScoredChunk{
			"q":      {},
			"slow q": {chunk("slow chunk", 0.9)},
			"fast q": {chunk("fast chunk", 0.9)},
		},
		delays: map[string]time.Duration{"slow q": 30 * time.Millisecond},
	}
	gen := newFakeGenerator(
		"NEED_MORE_INFORMATION anything",
		"slow q\nfast q",
		"final",
	)
	uc := NewUsecase(store, gen, zap.NewNop())

	_, err := uc.Answer(context.Background(), "q", nil)
	require.NoError(t, err)

	require.Len(t, gen.calls, 3)
	assert.Equal(t, answerUserPrompt([]string{"slow chunk", "fast chunk"}, "q"), gen.calls[2].user)
}

func TestAnswer_RetrievalFailureIsUpstreamError(t *testing.T) {
	store := &fakeStore{err: errors.New("connection timed out")}
	gen := newFakeGenerator()
	uc := NewUsecase(store, gen, zap.NewNop())

	_, err := uc.Answer(context.Background(), "q", nil)
	require.ErrorIs(t, err, entity.ErrUpstream)
	assert.Empty(t, gen.calls)
}

func TestAnswer_GenerationFailureIsUpstreamError(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"q": {chunk("passage", 0.9)},
	}}
	gen := newFakeGenerator("unused")
	gen.failAt = 0
	gen.err = errors.New("quota exceeded")
	uc := NewUsecase(store, gen, zap.NewNop())

	_, err := uc.Answer(context.Background(), "q", nil)
	require.ErrorIs(t, err, entity.ErrUpstream)

	var upstream *entity.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "initial generation", upstream.Stage)
}

func TestAnswer_HistoryIsBoundedToLastTurns(t *testing.T) {
	store := &fakeStore{results: map[string][]entity.ScoredChunk{
		"q": {chunk("passage", 0.9)},
	}}
	gen := newFakeGenerator("answer")
	uc := NewUsecase(store, gen, zap.NewNop())

	history := make([]entity.ConversationTurn, 0, 8)
	for i := 0; i < 8; i++ {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		history = append(history, entity.ConversationTurn{Role: role, Content: strings.Repeat("x", i+1)})
	}

	_, err := uc.Answer(context.Background(), "q", history)
	require.NoError(t, err)

	require.Len(t, gen.calls, 1)
	require.Len(t, gen.calls[0].history, maxHistoryTurns)
	assert.Equal(t, history[len(history)-maxHistoryTurns:], gen.calls[0].history)
}
