package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/pickemhq/pickem-pool/external/oddsfeed"
	"github.com/pickemhq/pickem-pool/internal/config"
	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/participant"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
	cacherepo "github.com/pickemhq/pickem-pool/internal/infrastructure/repository/cache"
	"github.com/pickemhq/pickem-pool/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-pool/internal/infrastructure/repository/postgres"
	"github.com/pickemhq/pickem-pool/internal/interfaces/httpapi"
	basecache "github.com/pickemhq/pickem-pool/internal/platform/cache"
	idgen "github.com/pickemhq/pickem-pool/internal/platform/id"
	"github.com/pickemhq/pickem-pool/internal/platform/logging"
	"github.com/pickemhq/pickem-pool/internal/platform/resilience"
	"github.com/pickemhq/pickem-pool/internal/usecase"
)

type repositories struct {
	weeks        week.Repository
	games        game.Repository
	picks        pick.Repository
	participants participant.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router. The
// returned cleanup releases the refresh worker pool and the DB handle and
// must run after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger, accessLogger *slog.Logger) (*http.Server, func(), error) {
	repos, closeRepos, err := buildRepositories(cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.weeks = cacherepo.NewWeekRepository(repos.weeks, store)
		repos.games = cacherepo.NewGameRepository(repos.games, store)
		repos.participants = cacherepo.NewParticipantRepository(repos.participants, store)
	}

	generator := idgen.NewRandomGenerator()
	weekSvc := usecase.NewWeekService(repos.weeks, generator)
	gameSvc := usecase.NewGameService(repos.weeks, repos.games, repos.picks, generator, logger)
	pickSvc := usecase.NewPickService(repos.weeks, repos.games, repos.picks, generator)
	submissionSvc := usecase.NewSubmissionService(repos.weeks, repos.games, repos.picks, pickSvc)
	resultSvc := usecase.NewResultService(repos.games, repos.picks, logger)
	participantSvc := usecase.NewParticipantService(repos.participants)

	cleanup := closeRepos
	if cfg.OddsFeedEnabled {
		provider := oddsfeed.NewClient(oddsfeed.ClientConfig{
			BaseURL:    cfg.OddsFeedBaseURL,
			Token:      cfg.OddsFeedAPIKey,
			Timeout:    cfg.OddsFeedTimeout,
			MaxRetries: cfg.OddsFeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.OddsFeedCircuitEnabled,
				FailureThreshold: cfg.OddsFeedCircuitFailureCount,
				OpenTimeout:      cfg.OddsFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.OddsFeedCircuitHalfOpenMaxReq,
			},
		})

		refreshSvc, err := usecase.NewRefreshService(repos.games, provider, resultSvc, cfg.RefreshWorkers, logger)
		if err != nil {
			closeRepos()
			return nil, nil, fmt.Errorf("build refresh service: %w", err)
		}
		gameSvc.SetFreshnessChecker(refreshSvc)
		cleanup = func() {
			refreshSvc.Close()
			closeRepos()
		}
	}

	handler := httpapi.NewHandler(weekSvc, gameSvc, pickSvc, submissionSvc, resultSvc, participantSvc, logger)
	router := httpapi.NewRouter(handler, participantSvc, accessLogger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.AdminToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

// buildRepositories picks the backing store: Postgres when DB_URL is set,
// otherwise seeded in-memory repositories for local runs.
func buildRepositories(cfg config.Config) (repositories, func(), error) {
	if cfg.DBURL == "" {
		repos, err := seededMemoryRepositories()
		if err != nil {
			return repositories{}, nil, err
		}
		return repos, func() {}, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	if cfg.AppEnv == config.EnvDev {
		if err := postgres.BootstrapSeed(context.Background(), db); err != nil {
			_ = db.Close()
			return repositories{}, nil, fmt.Errorf("bootstrap seed: %w", err)
		}
	}

	gameRepo := postgres.NewGameRepository(db)
	return repositories{
		weeks:        postgres.NewWeekRepository(db),
		games:        gameRepo,
		picks:        postgres.NewPickRepository(db),
		participants: postgres.NewParticipantRepository(db),
	}, func() { _ = db.Close() }, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func seededMemoryRepositories() (repositories, error) {
	ctx := context.Background()

	weekRepo := memory.NewWeekRepository()
	for _, item := range memory.SeedWeeks() {
		if err := weekRepo.Create(ctx, item); err != nil {
			return repositories{}, fmt.Errorf("seed week %s: %w", item.ID, err)
		}
	}

	gameRepo := memory.NewGameRepository()
	for _, item := range memory.SeedGames() {
		if err := gameRepo.Create(ctx, item); err != nil {
			return repositories{}, fmt.Errorf("seed game %s: %w", item.ID, err)
		}
	}

	participantRepo := memory.NewParticipantRepository()
	for _, item := range memory.SeedParticipants() {
		if err := participantRepo.Create(ctx, item); err != nil {
			return repositories{}, fmt.Errorf("seed participant %s: %w", item.ID, err)
		}
	}

	return repositories{
		weeks:        weekRepo,
		games:        gameRepo,
		picks:        memory.NewPickRepository(gameRepo),
		participants: participantRepo,
	}, nil
}
