package validator

import (
	"fmt"
	"strings"

	"github.com/deanhq/portfolio-assistant/internal/entity"
)

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAsk validates an AskRequest before the pipeline runs: the query
// must be present and every supplied turn must carry a known role.
func (v *Validator) ValidateAsk(req *entity.AskRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query", entity.ErrEmptyQuery)
	}

	for i, turn := range req.ConversationHistory {
		if turn.Role != entity.RoleUser && turn.Role != entity.RoleAssistant {
			return fmt.Errorf("%w: conversationHistory[%d].role=%q", entity.ErrInvalidRole, i, turn.Role)
		}
		if turn.Content == "" {
			return fmt.Errorf("%w: conversationHistory[%d].content", entity.ErrMissingField, i)
		}
	}

	return nil
}
