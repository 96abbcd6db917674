package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastTurns(t *testing.T) {
	turns := []ConversationTurn{
		{Role: RoleUser, Content: "1"},
		{Role: RoleAssistant, Content: "2"},
		{Role: RoleUser, Content: "3"},
	}

	assert.Equal(t, turns, LastTurns(turns, 5), "short history passes through")
	assert.Equal(t, turns, LastTurns(turns, 3), "exact length passes through")
	assert.Equal(t, turns[1:], LastTurns(turns, 2), "long history keeps the suffix")
	assert.Nil(t, LastTurns(nil, 5))
}

func TestUpstreamError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &UpstreamError{Stage: "vector search", Err: cause}

	assert.EqualError(t, err, "vector search: dial tcp: connection refused")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)

	var upstream *UpstreamError
	require.ErrorAs(t, error(err), &upstream)
	assert.Equal(t, "vector search", upstream.Stage)
}
