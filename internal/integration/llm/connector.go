package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/deanhq/portfolio-assistant/internal/config"
	"github.com/deanhq/portfolio-assistant/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Connector wraps the OpenAI API (or any OpenAI-compatible gateway) for
// chat completions and query embeddings. One fixed model per concern, no
// internal retries: failures propagate so the pipeline can abort.
type Connector struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	logger         *zap.Logger
}

func NewConnector(cfg config.LLMConfig, logger *zap.Logger) *Connector {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	return &Connector{
		client:         openai.NewClientWithConfig(clientCfg),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		logger:         logger,
	}
}

// Complete sends system, history and user messages in order and returns
// the generated text verbatim.
func (c *Connector) Complete(ctx context.Context, system string, history []entity.ConversationTurn, user string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, turn := range history {
		role := openai.ChatMessageRoleUser
		if turn.Role == entity.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	ctxzap.Debug(ctx, "requesting chat completion",
		zap.String("model", c.chatModel),
		zap.Int("message_count", len(messages)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for one query text. Only the
// pgvector retrieval backend uses this.
func (c *Connector) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return resp.Data[0].Embedding, nil
}
