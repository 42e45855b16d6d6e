package memory

import (
	"context"
	"sync"

	"github.com/matchcall/predictor-league/internal/domain/chat"
)

type ChatRepository struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

func NewChatRepository() *ChatRepository {
	return &ChatRepository{messages: make(map[string][]chat.Message)}
}

// ListByLeague returns the newest limit messages in chronological order.
func (r *ChatRepository) ListByLeague(_ context.Context, leagueID string, limit int) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := r.messages[leagueID]
	start := 0
	if limit > 0 && len(messages) > limit {
		start = len(messages) - limit
	}

	out := make([]chat.Message, len(messages)-start)
	copy(out, messages[start:])
	return out, nil
}

func (r *ChatRepository) Create(_ context.Context, m chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[m.LeagueID] = append(r.messages[m.LeagueID], m)
	return nil
}
