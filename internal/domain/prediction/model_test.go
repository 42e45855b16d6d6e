package prediction

import (
	"testing"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
)

func settledFixture(home, away int) fixture.Fixture {
	return fixture.Fixture{
		ID:        "fx-1",
		Status:    fixture.StatusFinished,
		HomeScore: &home,
		AwayScore: &away,
	}
}

func TestScoreTiers(t *testing.T) {
	t.Parallel()

	rules := DefaultScoringRules()
	f := settledFixture(2, 1)

	cases := []struct {
		name       string
		home, away int
		bonus      bool
		want       int
	}{
		{"exact scoreline", 2, 1, false, rules.ExactPoints},
		{"correct outcome wrong scoreline", 3, 0, false, rules.OutcomePoints},
		{"wrong outcome", 0, 2, false, 0},
		{"draw predicted against home win", 1, 1, false, 0},
		{"exact with bonus", 2, 1, true, rules.ExactPoints * rules.BonusMultiplier},
		{"outcome with bonus", 1, 0, true, rules.OutcomePoints * rules.BonusMultiplier},
		{"wrong with bonus stays zero", 0, 0, true, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := Prediction{UserID: "u-1", FixtureID: f.ID, PredictedHome: tc.home, PredictedAway: tc.away, IsBonus: tc.bonus}
			got := Score(p, f, rules)
			if !got.Settled {
				t.Fatalf("settled fixture must produce a settled result")
			}
			if got.Points != tc.want {
				t.Fatalf("Score() = %d, want %d", got.Points, tc.want)
			}
		})
	}
}

func TestScoreExactNeverStacksOutcome(t *testing.T) {
	t.Parallel()

	rules := ScoringRules{ExactPoints: 5, OutcomePoints: 2, BonusMultiplier: 2}
	p := Prediction{UserID: "u-1", FixtureID: "fx-1", PredictedHome: 2, PredictedAway: 1}
	got := Score(p, settledFixture(2, 1), rules)
	if got.Points != 5 {
		t.Fatalf("exact tier must not also earn the outcome tier, got %d", got.Points)
	}
}

func TestScorePendingFixture(t *testing.T) {
	t.Parallel()

	p := Prediction{UserID: "u-1", FixtureID: "fx-1", PredictedHome: 1, PredictedAway: 0}
	got := Score(p, fixture.Fixture{ID: "fx-1", Status: fixture.StatusScheduled}, DefaultScoringRules())
	if got.Settled {
		t.Fatalf("unsettled fixture must report a pending result, not an earned zero")
	}
	if got.Points != 0 {
		t.Fatalf("pending result must carry zero points, got %d", got.Points)
	}
}

func TestDrawOutcome(t *testing.T) {
	t.Parallel()

	got := Score(
		Prediction{UserID: "u-1", FixtureID: "fx-1", PredictedHome: 0, PredictedAway: 0},
		settledFixture(2, 2),
		DefaultScoringRules(),
	)
	if got.Points != DefaultScoringRules().OutcomePoints {
		t.Fatalf("predicted draw against an actual draw earns the outcome tier, got %d", got.Points)
	}
}
