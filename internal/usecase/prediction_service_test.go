package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
)

func matchdayFixtures(matchday, count int, kickoff time.Time) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, fixture.Fixture{
			ID:        "fx-" + string(rune('a'+i)),
			Matchday:  matchday,
			HomeTeam:  "Home",
			AwayTeam:  "Away",
			KickoffAt: kickoff.Add(time.Duration(i) * time.Hour),
			Status:    fixture.StatusScheduled,
		})
	}
	return out
}

func newPredictionService(fixtures *stubFixtureRepository, predictions *stubPredictionRepository, now time.Time) *PredictionService {
	service := NewPredictionService(fixtures, predictions, prediction.DefaultScoringRules(), &sequenceIDGenerator{}, nil)
	service.now = fixedClock(now)
	return service
}

func TestPredictionService_Submit_UpsertsBeforeKickoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepository{fixtures: matchdayFixtures(27, 10, now.Add(24*time.Hour))}
	predictions := &stubPredictionRepository{}
	service := newPredictionService(fixtures, predictions, now)

	first, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-a", PredictedHome: 2, PredictedAway: 1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.PredictedHome != 2 || first.PredictedAway != 1 {
		t.Fatalf("unexpected stored prediction: %+v", first)
	}

	// resubmission replaces, never duplicates
	second, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-a", PredictedHome: 0, PredictedAway: 0,
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if len(predictions.predictions) != 1 {
		t.Fatalf("expected a single stored prediction, got %d", len(predictions.predictions))
	}
	if second.PredictedHome != 0 || second.PredictedAway != 0 {
		t.Fatalf("resubmission must replace the scoreline: %+v", second)
	}
}

func TestPredictionService_Submit_RejectsLockedFixture(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, time.March, 1, 15, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepository{fixtures: []fixture.Fixture{{
		ID: "fx-a", Matchday: 27, HomeTeam: "Home", AwayTeam: "Away", KickoffAt: kickoff, Status: fixture.StatusScheduled,
	}}}
	service := newPredictionService(fixtures, &stubPredictionRepository{}, kickoff)

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-a", PredictedHome: 1, PredictedAway: 0,
	})
	if !errors.Is(err, prediction.ErrFixtureLocked) {
		t.Fatalf("expected ErrFixtureLocked at the kickoff instant, got %v", err)
	}
}

func TestPredictionService_Submit_EnforcesBonusQuota(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepository{fixtures: matchdayFixtures(27, 10, now.Add(24*time.Hour))}
	predictions := &stubPredictionRepository{}
	service := newPredictionService(fixtures, predictions, now)

	// 10 fixtures buy two bonus slots
	for _, fixtureID := range []string{"fx-a", "fx-b"} {
		if _, err := service.Submit(context.Background(), SubmitPredictionInput{
			UserID: "u-1", FixtureID: fixtureID, PredictedHome: 1, PredictedAway: 0, IsBonus: true,
		}); err != nil {
			t.Fatalf("bonus submit %s: %v", fixtureID, err)
		}
	}

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-c", PredictedHome: 1, PredictedAway: 0, IsBonus: true,
	})
	if !errors.Is(err, prediction.ErrBonusQuotaExceeded) {
		t.Fatalf("third bonus mark must exceed the quota, got %v", err)
	}

	// another user has their own quota
	if _, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-2", FixtureID: "fx-c", PredictedHome: 1, PredictedAway: 0, IsBonus: true,
	}); err != nil {
		t.Fatalf("other user's bonus submit: %v", err)
	}
}

func TestPredictionService_Submit_BonusRemovalFreesSlot(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepository{fixtures: matchdayFixtures(27, 10, now.Add(24*time.Hour))}
	predictions := &stubPredictionRepository{}
	service := newPredictionService(fixtures, predictions, now)

	for _, fixtureID := range []string{"fx-a", "fx-b"} {
		if _, err := service.Submit(context.Background(), SubmitPredictionInput{
			UserID: "u-1", FixtureID: fixtureID, PredictedHome: 1, PredictedAway: 0, IsBonus: true,
		}); err != nil {
			t.Fatalf("bonus submit %s: %v", fixtureID, err)
		}
	}

	// removal is always allowed, even at full quota
	if _, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-a", PredictedHome: 1, PredictedAway: 0, IsBonus: false,
	}); err != nil {
		t.Fatalf("bonus removal: %v", err)
	}

	// the freed slot can be marked elsewhere
	if _, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-c", PredictedHome: 1, PredictedAway: 0, IsBonus: true,
	}); err != nil {
		t.Fatalf("re-mark after removal: %v", err)
	}
}

func TestPredictionService_Submit_KeepingOwnBonusDoesNotCompete(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepository{fixtures: matchdayFixtures(27, 10, now.Add(24*time.Hour))}
	predictions := &stubPredictionRepository{}
	service := newPredictionService(fixtures, predictions, now)

	for _, fixtureID := range []string{"fx-a", "fx-b"} {
		if _, err := service.Submit(context.Background(), SubmitPredictionInput{
			UserID: "u-1", FixtureID: fixtureID, PredictedHome: 1, PredictedAway: 0, IsBonus: true,
		}); err != nil {
			t.Fatalf("bonus submit %s: %v", fixtureID, err)
		}
	}

	// changing the scoreline while keeping the bonus mark must pass
	if _, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-b", PredictedHome: 3, PredictedAway: 2, IsBonus: true,
	}); err != nil {
		t.Fatalf("resubmit with kept bonus: %v", err)
	}
}

func TestPredictionService_Submit_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	fixtures := &stubFixtureRepository{fixtures: matchdayFixtures(27, 1, now.Add(time.Hour))}
	service := newPredictionService(fixtures, &stubPredictionRepository{}, now)

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-a", PredictedHome: -1, PredictedAway: 0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("negative score must map to invalid input, got %v", err)
	}

	_, err = service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "u-1", FixtureID: "fx-missing", PredictedHome: 1, PredictedAway: 0,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown fixture must map to not found, got %v", err)
	}
}

func TestPredictionService_ListMine_PendingVersusZero(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	two, one := 2, 1
	fixtures := &stubFixtureRepository{fixtures: []fixture.Fixture{
		{ID: "fx-done", Matchday: 27, HomeTeam: "A", AwayTeam: "B", KickoffAt: now.Add(-48 * time.Hour), Status: fixture.StatusFinished, HomeScore: &two, AwayScore: &one},
		{ID: "fx-open", Matchday: 28, HomeTeam: "C", AwayTeam: "D", KickoffAt: now.Add(48 * time.Hour), Status: fixture.StatusScheduled},
	}}
	predictions := &stubPredictionRepository{predictions: []prediction.Prediction{
		{ID: "p-1", UserID: "u-1", FixtureID: "fx-done", PredictedHome: 0, PredictedAway: 2},
		{ID: "p-2", UserID: "u-1", FixtureID: "fx-open", PredictedHome: 1, PredictedAway: 1},
	}}
	service := newPredictionService(fixtures, predictions, now)

	views, err := service.ListMine(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if !views[0].Settled || views[0].Points != 0 {
		t.Fatalf("wrong prediction on a settled fixture is an earned zero: %+v", views[0])
	}
	if views[1].Settled {
		t.Fatalf("prediction on an open fixture must be pending: %+v", views[1])
	}
}
