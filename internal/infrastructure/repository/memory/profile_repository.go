package memory

import (
	"context"
	"sync"

	"github.com/matchcall/predictor-league/internal/domain/profile"
)

type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: make(map[string]profile.Profile)}
}

func (r *ProfileRepository) GetByUserID(_ context.Context, userID string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	return p, ok, nil
}

func (r *ProfileRepository) ListByUserIDs(_ context.Context, userIDs []string) ([]profile.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []profile.Profile
	for _, id := range userIDs {
		if p, ok := r.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProfileRepository) Upsert(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[p.UserID]; ok {
		p.CreatedAt = existing.CreatedAt
	}
	r.profiles[p.UserID] = p
	return nil
}
