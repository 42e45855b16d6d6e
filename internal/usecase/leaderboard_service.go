package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/domain/leaderboard"
	"github.com/matchcall/predictor-league/internal/domain/league"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
	"github.com/matchcall/predictor-league/internal/domain/profile"
	"github.com/matchcall/predictor-league/internal/platform/cache"
	"github.com/matchcall/predictor-league/internal/platform/logging"
	"github.com/matchcall/predictor-league/internal/platform/resilience"
)

// LeaderboardService derives standings, honours, and stats for a league on
// demand. Derived rows are cached briefly per league and rebuilt behind a
// singleflight so a busy league recomputes once, not per request.
type LeaderboardService struct {
	leagueRepo     league.Repository
	predictionRepo prediction.Repository
	fixtureRepo    fixture.Repository
	profileRepo    profile.Repository
	rules          prediction.ScoringRules
	store          *cache.Store
	flight         *resilience.SingleFlight
	logger         *logging.Logger
	now            func() time.Time
}

func NewLeaderboardService(
	leagueRepo league.Repository,
	predictionRepo prediction.Repository,
	fixtureRepo fixture.Repository,
	profileRepo profile.Repository,
	rules prediction.ScoringRules,
	cacheTTL time.Duration,
	logger *logging.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeaderboardService{
		leagueRepo:     leagueRepo,
		predictionRepo: predictionRepo,
		fixtureRepo:    fixtureRepo,
		profileRepo:    profileRepo,
		rules:          rules,
		store:          cache.NewStore(cacheTTL),
		flight:         &resilience.SingleFlight{},
		logger:         logger,
		now:            time.Now,
	}
}

// Leaderboard returns the league table as of now. Membership is required.
func (s *LeaderboardService) Leaderboard(ctx context.Context, userID, leagueID string) ([]leaderboard.Row, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.Leaderboard")
	defer span.End()

	in, err := s.loadInput(ctx, userID, leagueID)
	if err != nil {
		return nil, err
	}
	return leaderboard.Build(in), nil
}

// Honours returns the most recent monthly winners for the league.
func (s *LeaderboardService) Honours(ctx context.Context, userID, leagueID string, limit int) ([]leaderboard.MonthlyHonour, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.Honours")
	defer span.End()

	if limit <= 0 {
		limit = 6
	}
	in, err := s.loadInput(ctx, userID, leagueID)
	if err != nil {
		return nil, err
	}
	return leaderboard.Honours(in, limit), nil
}

// Stats returns per-member prediction tallies for the league.
func (s *LeaderboardService) Stats(ctx context.Context, userID, leagueID string) ([]leaderboard.UserStats, error) {
	ctx, span := startUsecaseSpan(ctx, "LeaderboardService.Stats")
	defer span.End()

	in, err := s.loadInput(ctx, userID, leagueID)
	if err != nil {
		return nil, err
	}
	return leaderboard.Stats(in), nil
}

// Invalidate drops the cached input for a league, forcing the next read to
// reload. Called after fixture imports settle new results.
func (s *LeaderboardService) Invalidate(ctx context.Context, leagueID string) {
	if leagueID == "" {
		s.store.DeletePrefix(ctx, "leaderboard:input:")
		return
	}
	s.store.Delete(ctx, "leaderboard:input:"+leagueID)
}

// loadInput gathers members, predictions, fixtures, and usernames for one
// league, fanning the repository reads out concurrently. The assembled input
// is cached; AsOf is stamped per call so the window math follows the clock
// even on a cache hit.
func (s *LeaderboardService) loadInput(ctx context.Context, userID, leagueID string) (leaderboard.Input, error) {
	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return leaderboard.Input{}, fmt.Errorf("%w: user id and league id are required", ErrInvalidInput)
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return leaderboard.Input{}, fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return leaderboard.Input{}, fmt.Errorf("%w: league not found", ErrNotFound)
	}
	isMember, err := s.leagueRepo.IsMember(ctx, leagueID, userID)
	if err != nil {
		return leaderboard.Input{}, fmt.Errorf("check league member: %w", err)
	}
	if !isMember {
		return leaderboard.Input{}, fmt.Errorf("%w: you are not a member of this league", ErrForbidden)
	}

	key := "leaderboard:input:" + leagueID
	if cached, ok := s.store.Get(ctx, key); ok {
		if in, ok := cached.(leaderboard.Input); ok {
			in.AsOf = s.now().UTC()
			return in, nil
		}
	}

	value, err, shared := s.flight.Do(key, func() (any, error) {
		in, err := s.fetchInput(ctx, leagueID)
		if err != nil {
			return leaderboard.Input{}, err
		}
		s.store.Set(ctx, key, in)
		return in, nil
	})
	if err != nil {
		return leaderboard.Input{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "leaderboard input load shared", "league_id", leagueID)
	}

	in, ok := value.(leaderboard.Input)
	if !ok {
		return leaderboard.Input{}, fmt.Errorf("unexpected leaderboard input type %T", value)
	}
	in.AsOf = s.now().UTC()
	return in, nil
}

func (s *LeaderboardService) fetchInput(ctx context.Context, leagueID string) (leaderboard.Input, error) {
	memberships, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return leaderboard.Input{}, fmt.Errorf("list league members: %w", err)
	}
	memberIDs := make([]string, 0, len(memberships))
	for _, m := range memberships {
		memberIDs = append(memberIDs, m.UserID)
	}

	var (
		predictions []prediction.Prediction
		fixtures    []fixture.Fixture
		profiles    []profile.Profile
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		predictions, err = s.predictionRepo.ListByUsers(ctx, memberIDs)
		if err != nil {
			return fmt.Errorf("list member predictions: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		fixtures, err = s.fixtureRepo.List(ctx)
		if err != nil {
			return fmt.Errorf("list fixtures: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		profiles, err = s.profileRepo.ListByUserIDs(ctx, memberIDs)
		if err != nil {
			return fmt.Errorf("list member profiles: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return leaderboard.Input{}, err
	}

	usernames := make(map[string]string, len(profiles))
	for _, pr := range profiles {
		usernames[pr.UserID] = pr.Username
	}

	return leaderboard.Input{
		Members:     memberIDs,
		Usernames:   usernames,
		Predictions: predictions,
		Fixtures:    fixtures,
		Rules:       s.rules,
	}, nil
}
