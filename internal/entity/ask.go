package entity

// Conversation roles accepted from callers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single prior exchange supplied by the caller,
// oldest first. The service never stores turns between requests.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the inbound body of POST /api/ask.
type AskRequest struct {
	Query               string             `json:"query"`
	ConversationHistory []ConversationTurn `json:"conversationHistory,omitempty"`
}

// AskResponse carries the final answer back to the caller.
type AskResponse struct {
	Answer string `json:"answer"`
}

// SuggestedPrompt is a canned question shown on the portfolio page,
// optionally with a precomputed answer from the warmup cache.
type SuggestedPrompt struct {
	Prompt string `json:"prompt"`
	Warmed bool   `json:"warmed"`
}

// LastTurns returns a bounded suffix of history, at most n turns.
// The input slice is not mutated.
func LastTurns(history []ConversationTurn, n int) []ConversationTurn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
