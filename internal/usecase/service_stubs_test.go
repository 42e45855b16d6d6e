package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/chat"
	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/domain/league"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
	"github.com/matchcall/predictor-league/internal/domain/profile"
)

type stubFixtureRepository struct {
	mu       sync.Mutex
	fixtures []fixture.Fixture
	listErr  error
}

func (s *stubFixtureRepository) List(_ context.Context) ([]fixture.Fixture, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]fixture.Fixture(nil), s.fixtures...), nil
}

func (s *stubFixtureRepository) ListByMatchday(_ context.Context, matchday int) ([]fixture.Fixture, error) {
	var out []fixture.Fixture
	for _, f := range s.fixtures {
		if f.Matchday == matchday {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *stubFixtureRepository) GetByID(_ context.Context, id string) (fixture.Fixture, bool, error) {
	for _, f := range s.fixtures {
		if f.ID == id {
			return f, true, nil
		}
	}
	return fixture.Fixture{}, false, nil
}

func (s *stubFixtureRepository) Upsert(_ context.Context, fixtures []fixture.Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, incoming := range fixtures {
		replaced := false
		for i, existing := range s.fixtures {
			if existing.ID == incoming.ID {
				s.fixtures[i] = incoming
				replaced = true
				break
			}
		}
		if !replaced {
			s.fixtures = append(s.fixtures, incoming)
		}
	}
	return nil
}

type stubPredictionRepository struct {
	predictions []prediction.Prediction
	upsertErr   error
}

func (s *stubPredictionRepository) ListByUser(_ context.Context, userID string) ([]prediction.Prediction, error) {
	var out []prediction.Prediction
	for _, p := range s.predictions {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPredictionRepository) ListByUsers(_ context.Context, userIDs []string) ([]prediction.Prediction, error) {
	wanted := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	var out []prediction.Prediction
	for _, p := range s.predictions {
		if _, ok := wanted[p.UserID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPredictionRepository) ListByUserAndFixtures(_ context.Context, userID string, fixtureIDs []string) ([]prediction.Prediction, error) {
	wanted := make(map[string]struct{}, len(fixtureIDs))
	for _, id := range fixtureIDs {
		wanted[id] = struct{}{}
	}
	var out []prediction.Prediction
	for _, p := range s.predictions {
		if p.UserID != userID {
			continue
		}
		if _, ok := wanted[p.FixtureID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPredictionRepository) Upsert(_ context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	if s.upsertErr != nil {
		return prediction.Prediction{}, s.upsertErr
	}
	for i, existing := range s.predictions {
		if existing.UserID == p.UserID && existing.FixtureID == p.FixtureID {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			s.predictions[i] = p
			return p, nil
		}
	}
	s.predictions = append(s.predictions, p)
	return p, nil
}

type stubLeagueRepository struct {
	leagues []league.League
	members []league.Membership
}

func (s *stubLeagueRepository) Create(_ context.Context, l league.League) error {
	for _, existing := range s.leagues {
		if existing.ID == l.ID {
			return errors.New(`duplicate key value violates unique constraint "leagues_pkey"`)
		}
	}
	s.leagues = append(s.leagues, l)
	return nil
}

func (s *stubLeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	for _, l := range s.leagues {
		if l.ID == leagueID {
			return l, true, nil
		}
	}
	return league.League{}, false, nil
}

func (s *stubLeagueRepository) GetByInviteCode(_ context.Context, inviteCode string) (league.League, bool, error) {
	for _, l := range s.leagues {
		if l.InviteCode != "" && l.InviteCode == inviteCode {
			return l, true, nil
		}
	}
	return league.League{}, false, nil
}

func (s *stubLeagueRepository) ListPublic(_ context.Context) ([]league.League, error) {
	var out []league.League
	for _, l := range s.leagues {
		if !l.IsPrivate() {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *stubLeagueRepository) ListByUser(_ context.Context, userID string) ([]league.League, error) {
	var out []league.League
	for _, m := range s.members {
		if m.UserID != userID {
			continue
		}
		for _, l := range s.leagues {
			if l.ID == m.LeagueID {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (s *stubLeagueRepository) AddMember(_ context.Context, m league.Membership) error {
	for _, existing := range s.members {
		if existing.LeagueID == m.LeagueID && existing.UserID == m.UserID {
			return errors.New(`duplicate key value violates unique constraint "league_members_pkey"`)
		}
	}
	s.members = append(s.members, m)
	return nil
}

func (s *stubLeagueRepository) RemoveMember(_ context.Context, leagueID, userID string) error {
	for i, m := range s.members {
		if m.LeagueID == leagueID && m.UserID == userID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *stubLeagueRepository) IsMember(_ context.Context, leagueID, userID string) (bool, error) {
	for _, m := range s.members {
		if m.LeagueID == leagueID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubLeagueRepository) ListMembers(_ context.Context, leagueID string) ([]league.Membership, error) {
	var out []league.Membership
	for _, m := range s.members {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubProfileRepository struct {
	profiles map[string]string
}

func (s *stubProfileRepository) GetByUserID(_ context.Context, userID string) (profile.Profile, bool, error) {
	username, ok := s.profiles[userID]
	if !ok {
		return profile.Profile{}, false, nil
	}
	return profile.Profile{UserID: userID, Username: username}, true, nil
}

func (s *stubProfileRepository) ListByUserIDs(_ context.Context, userIDs []string) ([]profile.Profile, error) {
	var out []profile.Profile
	for _, id := range userIDs {
		if username, ok := s.profiles[id]; ok {
			out = append(out, profile.Profile{UserID: id, Username: username})
		}
	}
	return out, nil
}

func (s *stubProfileRepository) Upsert(_ context.Context, p profile.Profile) error {
	if s.profiles == nil {
		s.profiles = make(map[string]string)
	}
	s.profiles[p.UserID] = p.Username
	return nil
}

type stubChatRepository struct {
	messages []chat.Message
}

func (s *stubChatRepository) ListByLeague(_ context.Context, leagueID string, limit int) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range s.messages {
		if m.LeagueID == leagueID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *stubChatRepository) Create(_ context.Context, m chat.Message) error {
	s.messages = append(s.messages, m)
	return nil
}

type sequenceIDGenerator struct {
	next int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("id-%d", g.next), nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
