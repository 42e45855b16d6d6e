package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
	idgen "github.com/matchcall/predictor-league/internal/platform/id"
	"github.com/matchcall/predictor-league/internal/platform/logging"
)

type SubmitPredictionInput struct {
	UserID        string
	FixtureID     string
	PredictedHome int
	PredictedAway int
	IsBonus       bool
}

// PredictionView pairs a stored prediction with its current scoring state.
type PredictionView struct {
	Prediction prediction.Prediction
	Points     int
	Settled    bool
}

type PredictionService struct {
	fixtureRepo    fixture.Repository
	predictionRepo prediction.Repository
	rules          prediction.ScoringRules
	idGen          idgen.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewPredictionService(
	fixtureRepo fixture.Repository,
	predictionRepo prediction.Repository,
	rules prediction.ScoringRules,
	idGen idgen.Generator,
	logger *logging.Logger,
) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		rules:          rules,
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

// Submit creates or replaces the caller's prediction for one fixture. The
// write path is where policy lives: a locked fixture rejects the write, and
// marking a bonus checks the caller's matchday quota. Removing a bonus mark
// is always allowed.
func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.Submit")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.FixtureID = strings.TrimSpace(input.FixtureID)

	p := prediction.Prediction{
		UserID:        input.UserID,
		FixtureID:     input.FixtureID,
		PredictedHome: input.PredictedHome,
		PredictedAway: input.PredictedAway,
		IsBonus:       input.IsBonus,
	}
	if err := prediction.Validate(p); err != nil {
		return prediction.Prediction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	f, exists, err := s.fixtureRepo.GetByID(ctx, input.FixtureID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get fixture by id: %w", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: fixture not found", ErrNotFound)
	}

	now := s.now().UTC()
	if fixture.IsLocked(f, now) {
		return prediction.Prediction{}, fmt.Errorf("%w: kickoff was %s", prediction.ErrFixtureLocked, f.KickoffAt.Format(time.RFC3339))
	}

	if input.IsBonus {
		if err := s.checkBonusQuota(ctx, input.UserID, f); err != nil {
			return prediction.Prediction{}, err
		}
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now

	stored, err := s.predictionRepo.Upsert(ctx, p)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	s.logger.InfoContext(ctx, "prediction submitted",
		"user_id", stored.UserID,
		"fixture_id", stored.FixtureID,
		"is_bonus", stored.IsBonus,
	)
	return stored, nil
}

// checkBonusQuota counts the caller's existing bonus marks across the
// fixture's matchday, excluding the fixture being written so a resubmission
// never competes with itself.
func (s *PredictionService) checkBonusQuota(ctx context.Context, userID string, f fixture.Fixture) error {
	window, err := s.fixtureRepo.ListByMatchday(ctx, f.Matchday)
	if err != nil {
		return fmt.Errorf("list matchday fixtures: %w", err)
	}

	fixtureIDs := make([]string, 0, len(window))
	for _, wf := range window {
		fixtureIDs = append(fixtureIDs, wf.ID)
	}
	existing, err := s.predictionRepo.ListByUserAndFixtures(ctx, userID, fixtureIDs)
	if err != nil {
		return fmt.Errorf("list matchday predictions: %w", err)
	}

	marked := 0
	for _, p := range existing {
		if p.IsBonus && p.FixtureID != f.ID {
			marked++
		}
	}
	if !prediction.CanMarkBonus(marked, len(window)) {
		return fmt.Errorf("%w: %d of %d used", prediction.ErrBonusQuotaExceeded, marked, prediction.BonusQuota(len(window)))
	}
	return nil
}

// ListFixtures returns fixtures, optionally narrowed to one matchday.
func (s *PredictionService) ListFixtures(ctx context.Context, matchday int) ([]fixture.Fixture, error) {
	if matchday > 0 {
		fixtures, err := s.fixtureRepo.ListByMatchday(ctx, matchday)
		if err != nil {
			return nil, fmt.Errorf("list fixtures by matchday: %w", err)
		}
		return fixtures, nil
	}
	fixtures, err := s.fixtureRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	return fixtures, nil
}

// ListMine returns the caller's predictions with each one's scoring state.
// Predictions on unsettled fixtures come back pending rather than zero.
func (s *PredictionService) ListMine(ctx context.Context, userID string) ([]PredictionView, error) {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.ListMine")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	predictions, err := s.predictionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions by user: %w", err)
	}
	fixtures, err := s.fixtureRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	fixturesByID := make(map[string]fixture.Fixture, len(fixtures))
	for _, f := range fixtures {
		fixturesByID[f.ID] = f
	}

	views := make([]PredictionView, 0, len(predictions))
	for _, p := range predictions {
		view := PredictionView{Prediction: p}
		if f, ok := fixturesByID[p.FixtureID]; ok {
			res := prediction.Score(p, f, s.rules)
			view.Points = res.Points
			view.Settled = res.Settled
		}
		views = append(views, view)
	}
	return views, nil
}
