package telegram

import (
	"context"
	"errors"

	"github.com/deanhq/portfolio-assistant/internal/config"
	"github.com/deanhq/portfolio-assistant/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const welcomeMessage = "Hi! I'm Dean's portfolio assistant. Ask me anything about Dean's skills, projects or professional experience."

// historyTurns bounds the per-chat history kept between messages. It
// matches what the pipeline forwards to the model anyway.
const historyTurns = 10

// Answerer is the part of the orchestrator the bot needs.
type Answerer interface {
	Answer(ctx context.Context, query string, history []entity.ConversationTurn) (string, error)
}

// Bot answers visitor questions over Telegram through the same pipeline
// as the HTTP API, with a short-lived per-chat conversation history.
type Bot struct {
	api      *tgbotapi.BotAPI
	answerer Answerer
	history  *historyStore
	cfg      *config.TelegramConfig
	logger   *zap.Logger
}

func NewBot(cfg *config.TelegramConfig, answerer Answerer, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	return &Bot{
		api:      api,
		answerer: answerer,
		history:  newHistoryStore(cfg.HistoryTTL, historyTurns),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Run processes updates via long polling until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("stopping telegram bot")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	requestID := uuid.NewString()
	lgr := b.logger.With(
		zap.String("request_id", requestID),
		zap.Int64("chat_id", msg.Chat.ID),
	)
	ctx = ctxzap.ToContext(ctx, lgr)

	if msg.IsCommand() {
		if msg.Command() == "start" {
			b.reply(ctx, msg.Chat.ID, welcomeMessage)
		}
		return
	}

	ctxzap.Info(ctx, "answering telegram question")

	history := b.history.Get(msg.Chat.ID)

	answer, err := b.answerer.Answer(ctx, msg.Text, history)
	if err != nil {
		ctxzap.Error(ctx, "failed to answer telegram question", zap.Error(err))
		if errors.Is(err, entity.ErrUpstream) {
			b.reply(ctx, msg.Chat.ID, "I'm temporarily unavailable, please try again in a moment.")
		} else {
			b.reply(ctx, msg.Chat.ID, "Sorry, I couldn't process that question.")
		}
		return
	}

	b.history.Append(msg.Chat.ID,
		entity.ConversationTurn{Role: entity.RoleUser, Content: msg.Text},
		entity.ConversationTurn{Role: entity.RoleAssistant, Content: answer},
	)

	b.reply(ctx, msg.Chat.ID, answer)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		ctxzap.Error(ctx, "failed to send telegram message", zap.Error(err))
	}
}
