package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/matchcall/predictor-league/external/footballdata"
	"github.com/matchcall/predictor-league/external/jobqueue"
	"github.com/matchcall/predictor-league/internal/config"
	"github.com/matchcall/predictor-league/internal/domain/chat"
	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/domain/league"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
	"github.com/matchcall/predictor-league/internal/domain/profile"
	"github.com/matchcall/predictor-league/internal/infrastructure/identity"
	"github.com/matchcall/predictor-league/internal/infrastructure/repository/memory"
	"github.com/matchcall/predictor-league/internal/infrastructure/repository/postgres"
	"github.com/matchcall/predictor-league/internal/interfaces/httpapi"
	idgen "github.com/matchcall/predictor-league/internal/platform/id"
	"github.com/matchcall/predictor-league/internal/platform/logging"
	"github.com/matchcall/predictor-league/internal/platform/resilience"
	"github.com/matchcall/predictor-league/internal/usecase"
)

type repositories struct {
	fixtures    fixture.Repository
	predictions prediction.Repository
	leagues     league.Repository
	chats       chat.Repository
	profiles    profile.Repository
}

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	rules := prediction.ScoringRules{
		ExactPoints:     cfg.ScoringExactPoints,
		OutcomePoints:   cfg.ScoringOutcomePoints,
		BonusMultiplier: cfg.ScoringBonusMultiplier,
	}
	idGen := idgen.NewRandomGenerator()

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		cacheTTL = -1
	}

	predictionSvc := usecase.NewPredictionService(repos.fixtures, repos.predictions, rules, idGen, logger)
	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.profiles, idGen)
	leaderboardSvc := usecase.NewLeaderboardService(
		repos.leagues,
		repos.predictions,
		repos.fixtures,
		repos.profiles,
		rules,
		cacheTTL,
		logger,
	)
	chatSvc := usecase.NewChatService(repos.leagues, repos.chats, idGen)
	ingestionSvc := buildIngestionService(cfg, repos.fixtures, leaderboardSvc, logger)

	identityClient := identity.NewClient(
		&http.Client{Timeout: cfg.IdentityTimeout},
		cfg.IdentityBaseURL,
		cfg.IdentityIntrospectPath,
		cfg.IdentityAdminKey,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.IdentityCircuitEnabled,
			FailureThreshold: cfg.IdentityCircuitFailureCount,
			OpenTimeout:      cfg.IdentityCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.IdentityCircuitHalfOpenMaxReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(predictionSvc, leagueSvc, leaderboardSvc, chatSvc, ingestionSvc, logger)
	router := httpapi.NewRouter(handler, identityClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("storage", "driver", "memory")
		return repositories{
			fixtures:    memory.NewFixtureRepository(memory.SeedFixtures()),
			predictions: memory.NewPredictionRepository(),
			leagues:     memory.NewLeagueRepository(),
			chats:       memory.NewChatRepository(),
			profiles:    memory.NewProfileRepository(),
		}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, err
	}

	if cfg.AppEnv == config.EnvDev {
		seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := postgres.BootstrapSeed(seedCtx, db); err != nil {
			return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	logger.Info("storage", "driver", "postgres", "db_name", dbNameFromURL(cfg.DBURL))
	return repositories{
		fixtures:    postgres.NewFixtureRepository(db),
		predictions: postgres.NewPredictionRepository(db),
		leagues:     postgres.NewLeagueRepository(db),
		chats:       postgres.NewChatRepository(db),
		profiles:    postgres.NewProfileRepository(db),
	}, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// buildIngestionService returns nil when no upstream provider is configured;
// the jobs endpoint then reports the dependency as unavailable.
func buildIngestionService(
	cfg config.Config,
	fixtureRepo fixture.Repository,
	leaderboardSvc *usecase.LeaderboardService,
	logger *logging.Logger,
) *usecase.IngestionService {
	if !cfg.FootballDataEnabled {
		logger.Info("fixture import disabled", "reason", "FOOTBALL_DATA_ENABLED=false")
		return nil
	}

	provider := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:     cfg.FootballDataBaseURL,
		Token:       cfg.FootballDataToken,
		Competition: cfg.FootballDataCompetition,
		Season:      strconv.Itoa(cfg.FootballDataSeason),
		Timeout:     cfg.FootballDataTimeout,
		MaxRetries:  cfg.FootballDataMaxRetries,
		Logger:      logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballDataCircuitEnabled,
			FailureThreshold: cfg.FootballDataCircuitFailureCount,
			OpenTimeout:      cfg.FootballDataCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpenMaxReq,
		},
	})

	var publisher *jobqueue.QStashPublisher
	if cfg.QStashEnabled {
		publisher = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	if publisher != nil {
		return usecase.NewIngestionService(provider, fixtureRepo, publisher, leaderboardSvc, cfg.ImportRerunDelay, logger)
	}
	return usecase.NewIngestionService(provider, fixtureRepo, nil, leaderboardSvc, cfg.ImportRerunDelay, logger)
}
