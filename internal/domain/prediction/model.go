package prediction

import (
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
)

// Prediction is one user's submitted scoreline for one fixture. A user holds
// at most one prediction per fixture; resubmitting before kickoff replaces it.
type Prediction struct {
	ID            string
	UserID        string
	FixtureID     string
	PredictedHome int
	PredictedAway int
	IsBonus       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScoringRules stores the point values awarded per scoring tier.
type ScoringRules struct {
	ExactPoints     int
	OutcomePoints   int
	BonusMultiplier int
}

func DefaultScoringRules() ScoringRules {
	return ScoringRules{
		ExactPoints:     5,
		OutcomePoints:   2,
		BonusMultiplier: 2,
	}
}

// Result is the outcome of scoring one prediction. Settled=false means the
// fixture has no final result yet; it is not the same as an earned zero.
type Result struct {
	Points  int
	Settled bool
}

func outcomeOf(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	default:
		return 0
	}
}

// Score evaluates a single prediction against its fixture. Tiers are
// mutually exclusive: an exact scoreline earns only the exact tier, a correct
// outcome with the wrong scoreline earns the outcome tier, anything else earns
// zero. A bonus mark multiplies the earned tier.
func Score(p Prediction, f fixture.Fixture, rules ScoringRules) Result {
	if !f.IsSettled() {
		return Result{}
	}

	points := 0
	switch {
	case p.PredictedHome == *f.HomeScore && p.PredictedAway == *f.AwayScore:
		points = rules.ExactPoints
	case outcomeOf(p.PredictedHome, p.PredictedAway) == outcomeOf(*f.HomeScore, *f.AwayScore):
		points = rules.OutcomePoints
	}

	if p.IsBonus {
		points *= rules.BonusMultiplier
	}
	return Result{Points: points, Settled: true}
}
