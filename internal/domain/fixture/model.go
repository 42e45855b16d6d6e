package fixture

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Fixture represents one scheduled match.
type Fixture struct {
	ID         string
	ExternalID int64
	Matchday   int
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	Status     string
	HomeScore  *int
	AwayScore  *int
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "FT", "AET", "PEN":
		return true
	default:
		return false
	}
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed, "ABANDONED":
		return true
	default:
		return false
	}
}

// IsLocked reports whether predictions for the fixture are closed.
// A fixture stays open strictly before kickoff and locks at the kickoff
// instant itself.
func IsLocked(f Fixture, now time.Time) bool {
	return !now.Before(f.KickoffAt)
}

// IsSettled reports whether the fixture carries a final result that can be
// scored against.
func (f Fixture) IsSettled() bool {
	return IsFinishedStatus(f.Status) && f.HomeScore != nil && f.AwayScore != nil
}
