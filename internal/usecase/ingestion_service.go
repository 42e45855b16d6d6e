package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/platform/logging"
)

const (
	defaultImportWorkers = 4
	maxImportWorkers     = 16

	// ImportFixturesJobPath is the internal route the scheduler re-enqueues.
	ImportFixturesJobPath = "/v1/internal/jobs/import-fixtures"
)

// FixtureProvider fetches the season's matches from the upstream data source.
type FixtureProvider interface {
	FetchSeasonFixtures(ctx context.Context) ([]fixture.Fixture, error)
}

type jobPublisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type leaderboardInvalidator interface {
	Invalidate(ctx context.Context, leagueID string)
}

type ImportFixturesInput struct {
	MaxWorkers int
	// ScheduleNext re-enqueues the job after a successful run.
	ScheduleNext bool
}

type ImportFixturesResult struct {
	Fetched       int
	Upserted      int
	Skipped       int
	MatchdayCount int
	WorkerCount   int
	DurationMs    int64
}

// IngestionService imports fixtures from the upstream provider and keeps the
// local copy current, including final scores so settled fixtures become
// scorable.
type IngestionService struct {
	provider    FixtureProvider
	fixtureRepo fixture.Repository
	publisher   jobPublisher
	invalidator leaderboardInvalidator
	rerunDelay  time.Duration
	logger      *logging.Logger
	now         func() time.Time
}

func NewIngestionService(
	provider FixtureProvider,
	fixtureRepo fixture.Repository,
	publisher jobPublisher,
	invalidator leaderboardInvalidator,
	rerunDelay time.Duration,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		provider:    provider,
		fixtureRepo: fixtureRepo,
		publisher:   publisher,
		invalidator: invalidator,
		rerunDelay:  rerunDelay,
		logger:      logger,
		now:         time.Now,
	}
}

// ImportFixtures fetches the season, drops records that cannot be stored,
// and upserts the rest one matchday batch per worker.
func (s *IngestionService) ImportFixtures(ctx context.Context, input ImportFixturesInput) (ImportFixturesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "IngestionService.ImportFixtures")
	defer span.End()

	start := s.now()

	fetched, err := s.provider.FetchSeasonFixtures(ctx)
	if err != nil {
		return ImportFixturesResult{}, fmt.Errorf("%w: fetch season fixtures: %v", ErrDependencyUnavailable, err)
	}

	batches := make(map[int][]fixture.Fixture)
	skipped := 0
	for _, f := range fetched {
		cleaned, ok := sanitizeImportedFixture(f)
		if !ok {
			skipped++
			continue
		}
		batches[cleaned.Matchday] = append(batches[cleaned.Matchday], cleaned)
	}

	matchdays := make([]int, 0, len(batches))
	for matchday := range batches {
		matchdays = append(matchdays, matchday)
	}
	sort.Ints(matchdays)

	workerCount := normalizeImportWorkerCount(input.MaxWorkers, len(matchdays))
	result := ImportFixturesResult{
		Fetched:       len(fetched),
		Skipped:       skipped,
		MatchdayCount: len(matchdays),
		WorkerCount:   workerCount,
	}
	if len(matchdays) == 0 {
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ImportFixturesResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var upserted atomic.Int64
	var firstErr error
	var errOnce sync.Once
	var workers sync.WaitGroup

	for _, matchday := range matchdays {
		batch := batches[matchday]
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if err := s.fixtureRepo.Upsert(ctx, batch); err != nil {
				errOnce.Do(func() {
					firstErr = fmt.Errorf("upsert matchday %d fixtures: %w", batch[0].Matchday, err)
				})
				return
			}
			upserted.Add(int64(len(batch)))
		}); err != nil {
			workers.Done()
			return ImportFixturesResult{}, fmt.Errorf("submit batch to worker pool: %w", err)
		}
	}
	workers.Wait()

	if firstErr != nil {
		return ImportFixturesResult{}, firstErr
	}

	result.Upserted = int(upserted.Load())
	result.DurationMs = time.Since(start).Milliseconds()

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, "")
	}

	s.logger.InfoContext(ctx, "fixture import finished",
		"fetched", result.Fetched,
		"upserted", result.Upserted,
		"skipped", result.Skipped,
		"matchdays", result.MatchdayCount,
		"duration_ms", result.DurationMs,
	)

	if input.ScheduleNext {
		if err := s.scheduleNextRun(ctx); err != nil {
			s.logger.WarnContext(ctx, "schedule next fixture import failed", "error", err)
		}
	}
	return result, nil
}

// scheduleNextRun enqueues the next import with a dedup id per slot so a
// retried run never stacks duplicate jobs.
func (s *IngestionService) scheduleNextRun(ctx context.Context) error {
	if s.publisher == nil || s.rerunDelay <= 0 {
		return nil
	}
	nextAt := s.now().UTC().Add(s.rerunDelay).Truncate(time.Minute)
	dedupID := "import-fixtures-" + nextAt.Format("200601021504")
	payload := map[string]any{"schedule_next": true}
	if err := s.publisher.Enqueue(ctx, ImportFixturesJobPath, payload, s.rerunDelay, dedupID); err != nil {
		return fmt.Errorf("enqueue next fixture import: %w", err)
	}
	return nil
}

// sanitizeImportedFixture normalizes an upstream record and reports whether
// it is storable. Scores must arrive both-or-neither; a half-reported result
// is stripped so it scores as pending rather than wrong.
func sanitizeImportedFixture(f fixture.Fixture) (fixture.Fixture, bool) {
	f.Status = fixture.NormalizeStatus(f.Status)
	if f.ID == "" || f.ExternalID <= 0 {
		return fixture.Fixture{}, false
	}
	if f.Matchday <= 0 || f.KickoffAt.IsZero() {
		return fixture.Fixture{}, false
	}
	if f.HomeTeam == "" || f.AwayTeam == "" {
		return fixture.Fixture{}, false
	}
	if (f.HomeScore == nil) != (f.AwayScore == nil) {
		f.HomeScore, f.AwayScore = nil, nil
	}
	return f, true
}

func normalizeImportWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = defaultImportWorkers
	}
	if count > maxImportWorkers {
		count = maxImportWorkers
	}
	if taskCount > 0 && count > taskCount {
		count = taskCount
	}
	if count < 1 {
		count = 1
	}
	return count
}
