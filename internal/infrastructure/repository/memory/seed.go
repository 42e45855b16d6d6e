package memory

import (
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
)

func intPtr(v int) *int {
	return &v
}

// SeedFixtures returns a small demo schedule: one finished matchday so
// scoring and leaderboards have data, and one upcoming matchday that is
// still open for predictions.
func SeedFixtures() []fixture.Fixture {
	return []fixture.Fixture{
		{
			ID:         "fd-537001",
			ExternalID: 537001,
			Matchday:   1,
			HomeTeam:   "Arsenal FC",
			AwayTeam:   "Chelsea FC",
			KickoffAt:  time.Date(2026, time.August, 15, 14, 0, 0, 0, time.UTC),
			Status:     fixture.StatusFinished,
			HomeScore:  intPtr(2),
			AwayScore:  intPtr(1),
		},
		{
			ID:         "fd-537002",
			ExternalID: 537002,
			Matchday:   1,
			HomeTeam:   "Liverpool FC",
			AwayTeam:   "Everton FC",
			KickoffAt:  time.Date(2026, time.August, 15, 16, 30, 0, 0, time.UTC),
			Status:     fixture.StatusFinished,
			HomeScore:  intPtr(3),
			AwayScore:  intPtr(0),
		},
		{
			ID:         "fd-537003",
			ExternalID: 537003,
			Matchday:   1,
			HomeTeam:   "Manchester City FC",
			AwayTeam:   "Tottenham Hotspur FC",
			KickoffAt:  time.Date(2026, time.August, 16, 15, 30, 0, 0, time.UTC),
			Status:     fixture.StatusFinished,
			HomeScore:  intPtr(1),
			AwayScore:  intPtr(1),
		},
		{
			ID:         "fd-537011",
			ExternalID: 537011,
			Matchday:   2,
			HomeTeam:   "Chelsea FC",
			AwayTeam:   "Liverpool FC",
			KickoffAt:  time.Date(2026, time.September, 12, 14, 0, 0, 0, time.UTC),
			Status:     fixture.StatusTimed,
		},
		{
			ID:         "fd-537012",
			ExternalID: 537012,
			Matchday:   2,
			HomeTeam:   "Everton FC",
			AwayTeam:   "Arsenal FC",
			KickoffAt:  time.Date(2026, time.September, 12, 16, 30, 0, 0, time.UTC),
			Status:     fixture.StatusTimed,
		},
		{
			ID:         "fd-537013",
			ExternalID: 537013,
			Matchday:   2,
			HomeTeam:   "Tottenham Hotspur FC",
			AwayTeam:   "Manchester City FC",
			KickoffAt:  time.Date(2026, time.September, 13, 15, 30, 0, 0, time.UTC),
			Status:     fixture.StatusTimed,
		},
	}
}
