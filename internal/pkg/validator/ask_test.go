package validator

import (
	"testing"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAsk(t *testing.T) {
	v := NewValidator()

	t.Run("valid request", func(t *testing.T) {
		err := v.ValidateAsk(&entity.AskRequest{
			Query: "What does Dean do?",
			ConversationHistory: []entity.ConversationTurn{
				{Role: entity.RoleUser, Content: "hi"},
				{Role: entity.RoleAssistant, Content: "hello"},
			},
		})
		assert.NoError(t, err)
	})

	t.Run("no history is valid", func(t *testing.T) {
		assert.NoError(t, v.ValidateAsk(&entity.AskRequest{Query: "q"}))
	})

	t.Run("empty query", func(t *testing.T) {
		err := v.ValidateAsk(&entity.AskRequest{Query: ""})
		require.ErrorIs(t, err, entity.ErrEmptyQuery)
	})

	t.Run("whitespace query", func(t *testing.T) {
		err := v.ValidateAsk(&entity.AskRequest{Query: " \t\n"})
		require.ErrorIs(t, err, entity.ErrEmptyQuery)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := v.ValidateAsk(&entity.AskRequest{
			Query: "q",
			ConversationHistory: []entity.ConversationTurn{
				{Role: "system", Content: "x"},
			},
		})
		require.ErrorIs(t, err, entity.ErrInvalidRole)
		assert.Contains(t, err.Error(), "conversationHistory[0]")
	})

	t.Run("missing content", func(t *testing.T) {
		err := v.ValidateAsk(&entity.AskRequest{
			Query: "q",
			ConversationHistory: []entity.ConversationTurn{
				{Role: entity.RoleUser, Content: "hi"},
				{Role: entity.RoleAssistant, Content: ""},
			},
		})
		require.ErrorIs(t, err, entity.ErrMissingField)
		assert.Contains(t, err.Error(), "conversationHistory[1]")
	})
}
