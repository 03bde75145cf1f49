package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/matchsync/external/apifootball"
	"github.com/riskibarqy/matchsync/external/footballdata"
	"github.com/riskibarqy/matchsync/internal/config"
	"github.com/riskibarqy/matchsync/internal/domain/team"
	"github.com/riskibarqy/matchsync/internal/infrastructure/lock/redislock"
	cacherepo "github.com/riskibarqy/matchsync/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchsync/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchsync/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/matchsync/internal/platform/cache"
	"github.com/riskibarqy/matchsync/internal/platform/id"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
)

// Ingestion is the wired core shared by the api and backfill binaries.
type Ingestion struct {
	Orchestrator *usecase.IngestionOrchestrator
	Dispatcher   *usecase.JobDispatcher
	Scheduler    *usecase.IngestionScheduler
	Highlights   *usecase.MatchQueryService
	TeamAudit    *usecase.TeamAuditService
	Store        *usecase.PersistenceGateway

	closers []func(context.Context) error
}

// NewIngestion builds stores, providers and the orchestrator. With an empty
// DB_URL it runs on in-memory repositories.
func NewIngestion(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Ingestion, error) {
	if logger == nil {
		logger = logging.Default()
	}
	ing := &Ingestion{}

	repos, err := ing.openRepositories(ctx, cfg, logger)
	if err != nil {
		_ = ing.Close(ctx)
		return nil, err
	}

	aliases := team.DefaultAliases()
	if cfg.TeamAliasFile != "" {
		if aliases, err = team.LoadAliasFile(cfg.TeamAliasFile); err != nil {
			_ = ing.Close(ctx)
			return nil, fmt.Errorf("load team aliases: %w", err)
		}
	}

	locker, err := ing.runLocker(ctx, cfg, logger)
	if err != nil {
		_ = ing.Close(ctx)
		return nil, err
	}

	gateway := usecase.NewPersistenceGateway(repos, logger)
	ing.Store = gateway
	resolver := usecase.NewTeamResolver(gateway, aliases, logger)
	priorities := cfg.ProviderPriorities()
	reconciler := usecase.NewMatchReconciler(resolver, gateway, usecase.MatchReconcilerConfig{Priorities: priorities}, logger)

	ing.Orchestrator = usecase.NewIngestionOrchestrator(
		providers(cfg, logger),
		reconciler,
		gateway,
		locker,
		id.NewUUIDGenerator(),
		usecase.OrchestratorConfig{
			Competitions:       cfg.IngestCompetitions,
			LookbackDays:       cfg.IngestLookbackDays,
			LookaheadDays:      cfg.IngestLookaheadDays,
			MultiSource:        cfg.IngestMultiSource,
			CompetitionDelay:   cfg.IngestCompetitionDelay,
			BackfillDelay:      cfg.IngestBackfillDelay,
			ScoreRefreshDelay:  cfg.IngestScoreRefreshDelay,
			ScoreRefreshWindow: cfg.IngestScoreRefreshWindow,
			Priorities:         priorities,
		},
		logger,
	)

	ing.Dispatcher, err = usecase.NewJobDispatcher(cfg.JobPoolSize, logger)
	if err != nil {
		_ = ing.Close(ctx)
		return nil, err
	}
	ing.closers = append(ing.closers, ing.Dispatcher.Close)

	ing.Scheduler = usecase.NewIngestionScheduler(ing.Orchestrator, ing.Dispatcher, usecase.SchedulerConfig{
		Interval:   cfg.SchedulerInterval,
		RunOnStart: cfg.SchedulerRunOnStart,
	}, logger)
	ing.Highlights = usecase.NewMatchQueryService(repos.Matches)
	ing.TeamAudit = usecase.NewTeamAuditService(gateway, aliases)

	return ing, nil
}

// Close releases resources in reverse order of acquisition.
func (i *Ingestion) Close(ctx context.Context) error {
	var errs []error
	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		if err := i.closers[idx](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	return errors.Join(errs...)
}

func (i *Ingestion) openRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (usecase.GatewayRepositories, error) {
	var repos usecase.GatewayRepositories

	if cfg.DBURL == "" {
		logger.Warn("DB_URL empty, using in-memory repositories")
		memTeams := memory.NewTeamRepository(nil)
		repos = usecase.GatewayRepositories{
			Teams:        memTeams,
			Matches:      memory.NewMatchRepository(memTeams),
			Competitions: memory.NewCompetitionRepository(),
			Raw:          memory.NewRawDataRepository(),
		}
	} else {
		dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePrepared)
		if cfg.DBAutoMigrate {
			if err := runMigrations(cfg.DBMigrationsDir, dsn, logger); err != nil {
				return repos, err
			}
		}
		db, err := openDB(ctx, dsn)
		if err != nil {
			return repos, err
		}
		i.closers = append(i.closers, func(context.Context) error { return db.Close() })
		repos = usecase.GatewayRepositories{
			Teams:        postgres.NewTeamRepository(db),
			Matches:      postgres.NewMatchRepository(db),
			Competitions: postgres.NewCompetitionRepository(db),
			Raw:          postgres.NewRawDataRepository(db),
		}
	}

	if cfg.CacheEnabled {
		repos.Teams = cacherepo.NewTeamRepository(repos.Teams, basecache.NewStore(cfg.CacheTTL))
	}
	return repos, nil
}

func (i *Ingestion) runLocker(ctx context.Context, cfg config.Config, logger *logging.Logger) (usecase.RunLocker, error) {
	if cfg.RunLockBackend != config.LockBackendRedis {
		return resilience.NewRunGuard(), nil
	}

	client, err := redislock.Dial(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	i.closers = append(i.closers, func(context.Context) error { return client.Close() })
	logger.Info("run lock backed by redis")
	return redislock.New(client, "", cfg.RunLockTTL, logger), nil
}

func providers(cfg config.Config, logger *logging.Logger) []usecase.MatchProvider {
	out := make([]usecase.MatchProvider, 0, 2)
	if p := cfg.FootballData; p.Enabled {
		out = append(out, footballdata.NewClient(footballdata.ClientConfig{
			BaseURL:        p.BaseURL,
			Token:          p.Token,
			Timeout:        p.Timeout,
			MaxRetries:     p.MaxRetries,
			RateLimit:      p.RateLimit,
			RateWindow:     p.RateWindow,
			BlockOnBudget:  p.BlockOnBudget,
			CircuitBreaker: cfg.ProviderCircuit,
			Logger:         logger,
		}))
	}
	if p := cfg.APIFootball; p.Enabled {
		out = append(out, apifootball.NewClient(apifootball.ClientConfig{
			BaseURL:        p.BaseURL,
			Token:          p.Token,
			Host:           p.Host,
			Timeout:        p.Timeout,
			MaxRetries:     p.MaxRetries,
			RateLimit:      p.RateLimit,
			RateWindow:     p.RateWindow,
			BlockOnBudget:  p.BlockOnBudget,
			LeagueIDs:      p.LeagueIDs,
			Season:         p.Season,
			CircuitBreaker: cfg.ProviderCircuit,
			Logger:         logger,
		}))
	}
	if len(out) == 0 {
		logger.Warn("no match provider enabled, runs will fail preflight")
	}
	return out
}

func NewHTTPServer(cfg config.Config, ing *Ingestion, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(httpapi.HandlerDeps{
		Ingestion:     ing.Orchestrator,
		Dispatcher:    ing.Dispatcher,
		Highlights:    ing.Highlights,
		TeamAudit:     ing.TeamAudit,
		Competitions:  ing.Store,
		Logger:        logger,
		ExposeDetails: cfg.IsDev(),
	})
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		CronSecret:         cfg.CronSecret,
	})

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
