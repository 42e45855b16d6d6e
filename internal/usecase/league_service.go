package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/league"
	"github.com/matchcall/predictor-league/internal/domain/profile"
	idgen "github.com/matchcall/predictor-league/internal/platform/id"
)

const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type CreateLeagueInput struct {
	UserID   string
	Name     string
	Private  bool
	HasChat  bool
	Username string
}

type JoinLeagueByInviteInput struct {
	UserID     string
	InviteCode string
}

// LeagueMember pairs a membership with the member's display name.
type LeagueMember struct {
	UserID   string
	Username string
	JoinedAt time.Time
}

type LeagueService struct {
	leagueRepo  league.Repository
	profileRepo profile.Repository
	idGen       idgen.Generator
	now         func() time.Time
}

func NewLeagueService(
	leagueRepo league.Repository,
	profileRepo profile.Repository,
	idGen idgen.Generator,
) *LeagueService {
	return &LeagueService{
		leagueRepo:  leagueRepo,
		profileRepo: profileRepo,
		idGen:       idGen,
		now:         time.Now,
	}
}

// Create stores a new league and enrols the creator as its first member.
// Private leagues get a generated invite code; public leagues never carry one.
func (s *LeagueService) Create(ctx context.Context, input CreateLeagueInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "LeagueService.Create")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.Name = strings.TrimSpace(input.Name)
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Name == "" {
		return league.League{}, fmt.Errorf("%w: league name is required", ErrInvalidInput)
	}

	leagueID, err := s.idGen.NewID()
	if err != nil {
		return league.League{}, fmt.Errorf("generate league id: %w", err)
	}

	visibility := league.VisibilityPublic
	inviteCode := ""
	if input.Private {
		visibility = league.VisibilityPrivate
		inviteCode, err = generateInviteCode(8)
		if err != nil {
			return league.League{}, fmt.Errorf("generate invite code: %w", err)
		}
	}

	now := s.now().UTC()
	created := league.League{
		ID:         leagueID,
		Name:       input.Name,
		Visibility: visibility,
		InviteCode: inviteCode,
		HasChat:    input.HasChat,
		CreatedBy:  input.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := created.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.leagueRepo.Create(ctx, created); err != nil {
		if isDuplicateConstraintError(err) {
			return league.League{}, fmt.Errorf("%w: duplicate league name or invite code", ErrConflict)
		}
		return league.League{}, fmt.Errorf("create league: %w", err)
	}

	if username := strings.TrimSpace(input.Username); username != "" {
		if err := s.profileRepo.Upsert(ctx, profile.Profile{UserID: input.UserID, Username: username, CreatedAt: now, UpdatedAt: now}); err != nil {
			return league.League{}, fmt.Errorf("upsert creator profile: %w", err)
		}
	}

	if err := s.addMember(ctx, created.ID, input.UserID, now); err != nil {
		return league.League{}, err
	}
	return created, nil
}

// JoinByInviteCode enrols the user in the private league the code belongs to.
func (s *LeagueService) JoinByInviteCode(ctx context.Context, input JoinLeagueByInviteInput) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "LeagueService.JoinByInviteCode")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.InviteCode = strings.ToUpper(strings.TrimSpace(input.InviteCode))
	if input.UserID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.InviteCode == "" {
		return league.League{}, fmt.Errorf("%w: invite code is required", ErrInvalidInput)
	}

	found, exists, err := s.leagueRepo.GetByInviteCode(ctx, input.InviteCode)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by invite code: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: invite code not found", ErrNotFound)
	}

	if err := s.addMember(ctx, found.ID, input.UserID, s.now().UTC()); err != nil {
		return league.League{}, err
	}
	return found, nil
}

// JoinPublic enrols the user in a public league directly. Private leagues
// reject direct joins; their invite code is the only door.
func (s *LeagueService) JoinPublic(ctx context.Context, userID, leagueID string) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "LeagueService.JoinPublic")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" {
		return league.League{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	found, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league not found", ErrNotFound)
	}
	if found.IsPrivate() {
		return league.League{}, fmt.Errorf("%w: league requires an invite code", ErrForbidden)
	}

	if err := s.addMember(ctx, found.ID, userID, s.now().UTC()); err != nil {
		return league.League{}, err
	}
	return found, nil
}

func (s *LeagueService) Leave(ctx context.Context, userID, leagueID string) error {
	ctx, span := startUsecaseSpan(ctx, "LeagueService.Leave")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return fmt.Errorf("%w: user id and league id are required", ErrInvalidInput)
	}

	isMember, err := s.leagueRepo.IsMember(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("check league member: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: you are not a member of this league", ErrNotFound)
	}

	if err := s.leagueRepo.RemoveMember(ctx, leagueID, userID); err != nil {
		return fmt.Errorf("remove league member: %w", err)
	}
	return nil
}

func (s *LeagueService) ListMine(ctx context.Context, userID string) ([]league.League, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	leagues, err := s.leagueRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}
	return leagues, nil
}

func (s *LeagueService) ListPublic(ctx context.Context) ([]league.League, error) {
	leagues, err := s.leagueRepo.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public leagues: %w", err)
	}
	return leagues, nil
}

// Members returns the league roster in join order, with usernames resolved.
// Only members may see the roster.
func (s *LeagueService) Members(ctx context.Context, userID, leagueID string) ([]LeagueMember, error) {
	ctx, span := startUsecaseSpan(ctx, "LeagueService.Members")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return nil, fmt.Errorf("%w: user id and league id are required", ErrInvalidInput)
	}

	if err := s.requireMember(ctx, leagueID, userID); err != nil {
		return nil, err
	}

	memberships, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	userIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		userIDs = append(userIDs, m.UserID)
	}
	profiles, err := s.profileRepo.ListByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list member profiles: %w", err)
	}
	usernameByID := make(map[string]string, len(profiles))
	for _, p := range profiles {
		usernameByID[p.UserID] = p.Username
	}

	members := make([]LeagueMember, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, LeagueMember{
			UserID:   m.UserID,
			Username: usernameByID[m.UserID],
			JoinedAt: m.JoinedAt,
		})
	}
	return members, nil
}

func (s *LeagueService) requireMember(ctx context.Context, leagueID, userID string) error {
	isMember, err := s.leagueRepo.IsMember(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("check league member: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: you are not a member of this league", ErrForbidden)
	}
	return nil
}

func (s *LeagueService) addMember(ctx context.Context, leagueID, userID string, joinedAt time.Time) error {
	err := s.leagueRepo.AddMember(ctx, league.Membership{
		LeagueID: leagueID,
		UserID:   userID,
		JoinedAt: joinedAt,
	})
	if err != nil {
		if isDuplicateConstraintError(err) {
			return fmt.Errorf("%w: already a member of this league", ErrConflict)
		}
		return fmt.Errorf("add league member: %w", err)
	}
	return nil
}

func generateInviteCode(length int) (string, error) {
	if length < 6 {
		length = 6
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(out), nil
}

func isDuplicateConstraintError(err error) bool {
	if err == nil {
		return false
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "duplicate key value violates unique constraint")
}
