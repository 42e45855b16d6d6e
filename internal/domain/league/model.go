package league

import (
	"errors"
	"fmt"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

var (
	ErrInvalidVisibility = errors.New("invalid league visibility")
	ErrInviteCodeShape   = errors.New("invite code presence must match visibility")
)

// League is a group of users competing on one leaderboard. Private leagues
// are joined through their invite code; public leagues can be joined by
// anyone. InviteCode is non-empty iff the league is private.
type League struct {
	ID         string
	Name       string
	Visibility Visibility
	InviteCode string
	HasChat    bool
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Membership struct {
	LeagueID string
	UserID   string
	JoinedAt time.Time
}

func (l League) IsPrivate() bool {
	return l.Visibility == VisibilityPrivate
}

func (l League) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	switch l.Visibility {
	case VisibilityPublic, VisibilityPrivate:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidVisibility, l.Visibility)
	}
	if l.IsPrivate() && l.InviteCode == "" {
		return fmt.Errorf("%w: private league without invite code", ErrInviteCodeShape)
	}
	if !l.IsPrivate() && l.InviteCode != "" {
		return fmt.Errorf("%w: public league carrying an invite code", ErrInviteCodeShape)
	}
	return nil
}
