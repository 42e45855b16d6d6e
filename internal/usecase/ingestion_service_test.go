package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
)

type stubFixtureProvider struct {
	fixtures []fixture.Fixture
	err      error
}

func (s *stubFixtureProvider) FetchSeasonFixtures(_ context.Context) ([]fixture.Fixture, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fixtures, nil
}

type recordingPublisher struct {
	paths    []string
	delays   []time.Duration
	dedupIDs []string
}

func (r *recordingPublisher) Enqueue(_ context.Context, path string, _ any, delay time.Duration, dedupID string) error {
	r.paths = append(r.paths, path)
	r.delays = append(r.delays, delay)
	r.dedupIDs = append(r.dedupIDs, dedupID)
	return nil
}

func importedSeason(now time.Time) []fixture.Fixture {
	two, one := 2, 1
	return []fixture.Fixture{
		{ID: "fd-1001", ExternalID: 1001, Matchday: 1, HomeTeam: "A", AwayTeam: "B", KickoffAt: now.Add(-48 * time.Hour), Status: "FINISHED", HomeScore: &two, AwayScore: &one},
		{ID: "fd-1002", ExternalID: 1002, Matchday: 1, HomeTeam: "C", AwayTeam: "D", KickoffAt: now.Add(-48 * time.Hour), Status: "finished", HomeScore: &one, AwayScore: &two},
		{ID: "fd-2001", ExternalID: 2001, Matchday: 2, HomeTeam: "A", AwayTeam: "C", KickoffAt: now.Add(72 * time.Hour), Status: "TIMED"},
		// missing matchday, dropped
		{ID: "fd-bad", ExternalID: 3001, HomeTeam: "E", AwayTeam: "F", KickoffAt: now.Add(72 * time.Hour), Status: "TIMED"},
		// half-reported score, stripped to pending
		{ID: "fd-2002", ExternalID: 2002, Matchday: 2, HomeTeam: "B", AwayTeam: "D", KickoffAt: now.Add(72 * time.Hour), Status: "TIMED", HomeScore: &one},
	}
}

func TestIngestionService_ImportFixtures(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)
	provider := &stubFixtureProvider{fixtures: importedSeason(now)}
	repo := &stubFixtureRepository{}
	publisher := &recordingPublisher{}

	service := NewIngestionService(provider, repo, publisher, nil, time.Hour, nil)
	service.now = fixedClock(now)

	result, err := service.ImportFixtures(context.Background(), ImportFixturesInput{ScheduleNext: true})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Fetched != 5 || result.Upserted != 4 || result.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.MatchdayCount != 2 {
		t.Fatalf("expected 2 matchday batches, got %d", result.MatchdayCount)
	}
	if len(repo.fixtures) != 4 {
		t.Fatalf("expected 4 stored fixtures, got %d", len(repo.fixtures))
	}

	for _, f := range repo.fixtures {
		if f.ID == "fd-2002" {
			if f.HomeScore != nil || f.AwayScore != nil {
				t.Fatalf("half-reported scores must be stripped: %+v", f)
			}
		}
		if f.ID == "fd-1002" && f.Status != fixture.StatusFinished {
			t.Fatalf("status must be normalized, got %q", f.Status)
		}
	}

	if len(publisher.paths) != 1 || publisher.paths[0] != ImportFixturesJobPath {
		t.Fatalf("expected next run enqueued on %s, got %+v", ImportFixturesJobPath, publisher.paths)
	}
	if publisher.delays[0] != time.Hour {
		t.Fatalf("expected rerun delay 1h, got %s", publisher.delays[0])
	}
	if publisher.dedupIDs[0] == "" {
		t.Fatalf("rerun must carry a deduplication id")
	}
}

func TestIngestionService_ImportFixtures_Idempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)
	provider := &stubFixtureProvider{fixtures: importedSeason(now)}
	repo := &stubFixtureRepository{}
	service := NewIngestionService(provider, repo, nil, nil, 0, nil)
	service.now = fixedClock(now)

	for i := 0; i < 2; i++ {
		if _, err := service.ImportFixtures(context.Background(), ImportFixturesInput{}); err != nil {
			t.Fatalf("import run %d: %v", i+1, err)
		}
	}
	if len(repo.fixtures) != 4 {
		t.Fatalf("re-import must upsert, not duplicate: got %d fixtures", len(repo.fixtures))
	}
}

func TestIngestionService_ImportFixtures_ProviderDown(t *testing.T) {
	t.Parallel()

	provider := &stubFixtureProvider{err: errors.New("upstream 503")}
	service := NewIngestionService(provider, &stubFixtureRepository{}, nil, nil, 0, nil)

	_, err := service.ImportFixtures(context.Background(), ImportFixturesInput{})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("provider failure must map to dependency unavailable, got %v", err)
	}
}
