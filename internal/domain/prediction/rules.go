package prediction

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeScore      = errors.New("predicted score must not be negative")
	ErrFixtureLocked      = errors.New("fixture is locked for predictions")
	ErrBonusQuotaExceeded = errors.New("bonus quota exceeded for this matchday")
)

// BonusQuotaDivisor sets how many fixtures in a matchday buy one bonus slot.
const BonusQuotaDivisor = 5

// BonusQuota returns how many bonus marks a user may hold across a matchday
// of the given size. One slot per five fixtures, rounded down; small
// matchdays can have no bonus at all.
func BonusQuota(windowSize int) int {
	if windowSize <= 0 {
		return 0
	}
	return windowSize / BonusQuotaDivisor
}

// CanMarkBonus reports whether a user who already holds markedInWindow bonus
// predictions in a matchday may mark one more. Removing a mark never goes
// through here; removal is always permitted.
func CanMarkBonus(markedInWindow, windowSize int) bool {
	return markedInWindow < BonusQuota(windowSize)
}

// Validate checks the submitted scoreline itself, independent of fixture
// state or quota.
func Validate(p Prediction) error {
	if p.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if p.FixtureID == "" {
		return fmt.Errorf("fixture id is required")
	}
	if p.PredictedHome < 0 {
		return fmt.Errorf("%w: home=%d", ErrNegativeScore, p.PredictedHome)
	}
	if p.PredictedAway < 0 {
		return fmt.Errorf("%w: away=%d", ErrNegativeScore, p.PredictedAway)
	}
	return nil
}
