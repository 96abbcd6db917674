package telegram

import (
	"strconv"
	"time"

	"github.com/deanhq/portfolio-assistant/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

// historyStore keeps a bounded per-chat conversation history in memory.
// Entries expire after the configured TTL, so a returning visitor starts
// a fresh conversation.
type historyStore struct {
	cache    *gocache.Cache
	maxTurns int
}

func newHistoryStore(ttl time.Duration, maxTurns int) *historyStore {
	return &historyStore{
		cache:    gocache.New(ttl, ttl/2),
		maxTurns: maxTurns,
	}
}

func (s *historyStore) Get(chatID int64) []entity.ConversationTurn {
	v, ok := s.cache.Get(strconv.FormatInt(chatID, 10))
	if !ok {
		return nil
	}
	return v.([]entity.ConversationTurn)
}

func (s *historyStore) Append(chatID int64, turns ...entity.ConversationTurn) {
	history := append(s.Get(chatID), turns...)
	history = entity.LastTurns(history, s.maxTurns)
	s.cache.Set(strconv.FormatInt(chatID, 10), history, gocache.DefaultExpiration)
}
