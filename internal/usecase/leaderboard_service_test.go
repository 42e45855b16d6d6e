package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/domain/league"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
)

func leaderboardFixtures(now time.Time) []fixture.Fixture {
	two, one := 2, 1
	return []fixture.Fixture{
		{ID: "fx-1", Matchday: 27, HomeTeam: "A", AwayTeam: "B", KickoffAt: now.Add(-7 * 24 * time.Hour), Status: fixture.StatusFinished, HomeScore: &two, AwayScore: &one},
		{ID: "fx-2", Matchday: 28, HomeTeam: "C", AwayTeam: "D", KickoffAt: now.Add(-24 * time.Hour), Status: fixture.StatusFinished, HomeScore: &one, AwayScore: &one},
		{ID: "fx-3", Matchday: 29, HomeTeam: "E", AwayTeam: "F", KickoffAt: now.Add(6 * 24 * time.Hour), Status: fixture.StatusScheduled},
	}
}

func newLeaderboardFixture(t *testing.T, now time.Time) (*LeaderboardService, *stubLeagueRepository) {
	t.Helper()

	leagues := &stubLeagueRepository{
		leagues: []league.League{{ID: "lg-1", Name: "Rivals", Visibility: league.VisibilityPublic, CreatedBy: "u-1"}},
		members: []league.Membership{
			{LeagueID: "lg-1", UserID: "u-1", JoinedAt: now.Add(-48 * time.Hour)},
			{LeagueID: "lg-1", UserID: "u-2", JoinedAt: now.Add(-24 * time.Hour)},
		},
	}
	predictions := &stubPredictionRepository{predictions: []prediction.Prediction{
		{ID: "p-1", UserID: "u-1", FixtureID: "fx-1", PredictedHome: 2, PredictedAway: 1},
		{ID: "p-2", UserID: "u-2", FixtureID: "fx-2", PredictedHome: 0, PredictedAway: 0},
		{ID: "p-3", UserID: "u-7", FixtureID: "fx-1", PredictedHome: 2, PredictedAway: 1}, // not a member
	}}
	fixtures := &stubFixtureRepository{fixtures: leaderboardFixtures(now)}
	profiles := &stubProfileRepository{profiles: map[string]string{"u-1": "Alice", "u-2": "Bob"}}

	service := NewLeaderboardService(leagues, predictions, fixtures, profiles, prediction.DefaultScoringRules(), time.Minute, nil)
	service.now = fixedClock(now)
	return service, leagues
}

func TestLeaderboardService_Leaderboard(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	service, _ := newLeaderboardFixture(t, now)

	rows, err := service.Leaderboard(context.Background(), "u-1", "lg-1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected one row per member, got %d", len(rows))
	}
	if rows[0].UserID != "u-1" || rows[0].OverallPoints != 5 || rows[0].Username != "Alice" {
		t.Fatalf("unexpected top row: %+v", rows[0])
	}
	if rows[1].UserID != "u-2" || rows[1].OverallPoints != 2 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	// matchday 28 is the current window as of now
	if rows[1].WeekPoints != 2 || rows[0].WeekPoints != 0 {
		t.Fatalf("window points wrong: top=%+v second=%+v", rows[0], rows[1])
	}
}

func TestLeaderboardService_MembershipRequired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	service, _ := newLeaderboardFixture(t, now)

	if _, err := service.Leaderboard(context.Background(), "u-9", "lg-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-member must be forbidden, got %v", err)
	}
	if _, err := service.Leaderboard(context.Background(), "u-1", "lg-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown league must map to not found, got %v", err)
	}
}

func TestLeaderboardService_CachedInputIsReused(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	service, leagues := newLeaderboardFixture(t, now)

	first, err := service.Leaderboard(context.Background(), "u-1", "lg-1")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}

	// membership churn after the first read is invisible until invalidation
	leagues.members = append(leagues.members, league.Membership{LeagueID: "lg-1", UserID: "u-3", JoinedAt: now})
	second, err := service.Leaderboard(context.Background(), "u-1", "lg-1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("cached input should be reused, got %d rows then %d", len(first), len(second))
	}

	service.Invalidate(context.Background(), "lg-1")
	third, err := service.Leaderboard(context.Background(), "u-1", "lg-1")
	if err != nil {
		t.Fatalf("third read: %v", err)
	}
	if len(third) != 3 {
		t.Fatalf("invalidation must pick up the new member, got %d rows", len(third))
	}
}

func TestLeaderboardService_HonoursAndStats(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	service, _ := newLeaderboardFixture(t, now)

	honours, err := service.Honours(context.Background(), "u-2", "lg-1", 6)
	if err != nil {
		t.Fatalf("honours: %v", err)
	}
	if len(honours) != 1 || honours[0].UserID != "u-1" || honours[0].MonthLabel != "March 2026" {
		t.Fatalf("unexpected honours: %+v", honours)
	}

	stats, err := service.Stats(context.Background(), "u-2", "lg-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats per member, got %d", len(stats))
	}
	if stats[0].Exact != 1 || stats[1].Outcome != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
