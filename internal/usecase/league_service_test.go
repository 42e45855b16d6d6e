package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/league"
)

func newLeagueService(leagues *stubLeagueRepository, profiles *stubProfileRepository, now time.Time) *LeagueService {
	service := NewLeagueService(leagues, profiles, &sequenceIDGenerator{})
	service.now = fixedClock(now)
	return service
}

func TestLeagueService_Create_PrivateGetsInviteCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	leagues := &stubLeagueRepository{}
	profiles := &stubProfileRepository{}
	service := newLeagueService(leagues, profiles, now)

	created, err := service.Create(context.Background(), CreateLeagueInput{
		UserID: "u-1", Name: "Front Room Rivals", Private: true, HasChat: true, Username: "Alice",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Visibility != league.VisibilityPrivate {
		t.Fatalf("expected private league, got %s", created.Visibility)
	}
	if len(created.InviteCode) != 8 {
		t.Fatalf("expected 8 char invite code, got %q", created.InviteCode)
	}
	for _, r := range created.InviteCode {
		if !strings.ContainsRune(inviteCodeAlphabet, r) {
			t.Fatalf("invite code %q contains %q outside the alphabet", created.InviteCode, r)
		}
	}

	isMember, err := leagues.IsMember(context.Background(), created.ID, "u-1")
	if err != nil || !isMember {
		t.Fatalf("creator must be enrolled as first member (member=%v err=%v)", isMember, err)
	}
	if profiles.profiles["u-1"] != "Alice" {
		t.Fatalf("creator profile must be stored, got %q", profiles.profiles["u-1"])
	}
}

func TestLeagueService_Create_PublicHasNoInviteCode(t *testing.T) {
	t.Parallel()

	service := newLeagueService(&stubLeagueRepository{}, &stubProfileRepository{}, time.Now())

	created, err := service.Create(context.Background(), CreateLeagueInput{UserID: "u-1", Name: "Open League"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Visibility != league.VisibilityPublic || created.InviteCode != "" {
		t.Fatalf("public league must carry no invite code: %+v", created)
	}
}

func TestLeagueService_JoinByInviteCode(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	leagues := &stubLeagueRepository{}
	service := newLeagueService(leagues, &stubProfileRepository{}, now)

	created, err := service.Create(context.Background(), CreateLeagueInput{UserID: "u-1", Name: "Rivals", Private: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joined, err := service.JoinByInviteCode(context.Background(), JoinLeagueByInviteInput{
		UserID: "u-2", InviteCode: strings.ToLower(created.InviteCode),
	})
	if err != nil {
		t.Fatalf("join by invite: %v", err)
	}
	if joined.ID != created.ID {
		t.Fatalf("joined wrong league: %s", joined.ID)
	}

	// joining twice is a conflict
	_, err = service.JoinByInviteCode(context.Background(), JoinLeagueByInviteInput{UserID: "u-2", InviteCode: created.InviteCode})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate join must map to conflict, got %v", err)
	}

	_, err = service.JoinByInviteCode(context.Background(), JoinLeagueByInviteInput{UserID: "u-3", InviteCode: "NOPE1234"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown invite code must map to not found, got %v", err)
	}
}

func TestLeagueService_JoinPublic_RejectsPrivateLeague(t *testing.T) {
	t.Parallel()

	leagues := &stubLeagueRepository{}
	service := newLeagueService(leagues, &stubProfileRepository{}, time.Now())

	private, err := service.Create(context.Background(), CreateLeagueInput{UserID: "u-1", Name: "Secret", Private: true})
	if err != nil {
		t.Fatalf("create private: %v", err)
	}
	open, err := service.Create(context.Background(), CreateLeagueInput{UserID: "u-1", Name: "Open"})
	if err != nil {
		t.Fatalf("create public: %v", err)
	}

	if _, err := service.JoinPublic(context.Background(), "u-2", private.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("direct join of a private league must be forbidden, got %v", err)
	}
	if _, err := service.JoinPublic(context.Background(), "u-2", open.ID); err != nil {
		t.Fatalf("join public: %v", err)
	}
}

func TestLeagueService_MembersInJoinOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	leagues := &stubLeagueRepository{}
	profiles := &stubProfileRepository{profiles: map[string]string{"u-1": "Alice", "u-2": "Bob"}}
	service := newLeagueService(leagues, profiles, now)

	created, err := service.Create(context.Background(), CreateLeagueInput{UserID: "u-1", Name: "Open"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	service.now = fixedClock(now.Add(time.Hour))
	if _, err := service.JoinPublic(context.Background(), "u-2", created.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	members, err := service.Members(context.Background(), "u-1", created.ID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 2 || members[0].UserID != "u-1" || members[1].UserID != "u-2" {
		t.Fatalf("members must come back in join order: %+v", members)
	}
	if members[0].Username != "Alice" || members[1].Username != "Bob" {
		t.Fatalf("usernames must be resolved: %+v", members)
	}

	// roster is member-only
	if _, err := service.Members(context.Background(), "u-9", created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-member roster read must be forbidden, got %v", err)
	}
}

func TestLeagueService_Leave(t *testing.T) {
	t.Parallel()

	leagues := &stubLeagueRepository{}
	service := newLeagueService(leagues, &stubProfileRepository{}, time.Now())

	created, err := service.Create(context.Background(), CreateLeagueInput{UserID: "u-1", Name: "Open"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.JoinPublic(context.Background(), "u-2", created.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := service.Leave(context.Background(), "u-2", created.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := service.Leave(context.Background(), "u-2", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("leaving twice must map to not found, got %v", err)
	}

	mine, err := service.ListMine(context.Background(), "u-2")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 0 {
		t.Fatalf("left league must disappear from the member's list: %+v", mine)
	}
}
