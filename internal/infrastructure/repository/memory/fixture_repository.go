package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	order    []string
	fixtures map[string]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	repo := &FixtureRepository{fixtures: make(map[string]fixture.Fixture)}
	for _, item := range fixtures {
		if _, exists := repo.fixtures[item.ID]; !exists {
			repo.order = append(repo.order, item.ID)
		}
		repo.fixtures[item.ID] = item
	}
	return repo
}

func (r *FixtureRepository) List(_ context.Context) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotSorted(func(fixture.Fixture) bool { return true }), nil
}

func (r *FixtureRepository) ListByMatchday(_ context.Context, matchday int) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotSorted(func(f fixture.Fixture) bool { return f.Matchday == matchday }), nil
}

func (r *FixtureRepository) GetByID(_ context.Context, id string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.fixtures[id]
	return f, ok, nil
}

func (r *FixtureRepository) Upsert(_ context.Context, fixtures []fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range fixtures {
		if _, exists := r.fixtures[item.ID]; !exists {
			r.order = append(r.order, item.ID)
		}
		r.fixtures[item.ID] = item
	}
	return nil
}

// snapshotSorted copies matching fixtures ordered by matchday then kickoff,
// matching the SQL repository's ordering.
func (r *FixtureRepository) snapshotSorted(match func(fixture.Fixture) bool) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(r.order))
	for _, id := range r.order {
		if f := r.fixtures[id]; match(f) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Matchday != out[j].Matchday {
			return out[i].Matchday < out[j].Matchday
		}
		return out[i].KickoffAt.Before(out[j].KickoffAt)
	})
	return out
}
