package memory

import (
	"context"
	"sync"

	"github.com/matchcall/predictor-league/internal/domain/prediction"
)

type predictionKey struct {
	userID    string
	fixtureID string
}

type PredictionRepository struct {
	mu          sync.RWMutex
	order       []predictionKey
	predictions map[predictionKey]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{predictions: make(map[predictionKey]prediction.Prediction)}
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, key := range r.order {
		if key.userID == userID {
			out = append(out, r.predictions[key])
		}
	}
	return out, nil
}

func (r *PredictionRepository) ListByUsers(_ context.Context, userIDs []string) ([]prediction.Prediction, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, key := range r.order {
		if _, ok := wanted[key.userID]; ok {
			out = append(out, r.predictions[key])
		}
	}
	return out, nil
}

func (r *PredictionRepository) ListByUserAndFixtures(_ context.Context, userID string, fixtureIDs []string) ([]prediction.Prediction, error) {
	if len(fixtureIDs) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(fixtureIDs))
	for _, id := range fixtureIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []prediction.Prediction
	for _, key := range r.order {
		if key.userID != userID {
			continue
		}
		if _, ok := wanted[key.fixtureID]; ok {
			out = append(out, r.predictions[key])
		}
	}
	return out, nil
}

// Upsert keeps the original ID and CreatedAt when a prediction is replaced,
// mirroring the ON CONFLICT behaviour of the SQL repository.
func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := predictionKey{userID: p.UserID, fixtureID: p.FixtureID}
	if existing, ok := r.predictions[key]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	} else {
		r.order = append(r.order, key)
	}
	r.predictions[key] = p
	return p, nil
}
