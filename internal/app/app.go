package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/live-cricket/internal/config"
	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
	"github.com/riskibarqy/live-cricket/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/live-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/live-cricket/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/live-cricket/internal/infrastructure/scraper"
	"github.com/riskibarqy/live-cricket/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/live-cricket/internal/platform/id"
	"github.com/riskibarqy/live-cricket/internal/platform/logging"
	"github.com/riskibarqy/live-cricket/internal/platform/resilience"
	"github.com/riskibarqy/live-cricket/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

type repositories struct {
	fixtures fixture.Repository
	stats    matchstats.Repository
	close    func() error
}

// NewHTTPServer wires storage, the scraper and the services behind the HTTP
// router. The returned cleanup drains background writes and releases
// resources; call it after the server has stopped.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := openRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ids, err := idgen.New(cfg.IDStrategy)
	if err != nil {
		_ = repos.close()
		return nil, nil, err
	}

	fetcher := scraper.NewFetcher(scraper.Config{
		Timeout:    cfg.ScraperTimeout,
		UserAgent:  cfg.ScraperUserAgent,
		MaxRetries: cfg.ScraperMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ScraperCircuitEnabled,
			FailureThreshold: cfg.ScraperCircuitFailureCount,
			OpenTimeout:      cfg.ScraperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ScraperCircuitHalfOpenMaxReq,
		},
	})

	fixtureSvc := usecase.NewFixtureService(fetcher, repos.fixtures, ids, usecase.FixtureServiceConfig{
		BaseURL:  cfg.ScraperBaseURL,
		LivePath: cfg.ScraperLivePath,
	}, logger)

	statsSvc, err := usecase.NewMatchStatsService(fixtureSvc, repos.stats, fetcher, usecase.MatchStatsServiceConfig{
		MaxWorkers: cfg.ScrapeMaxWorkers,
		LiveTTL:    cfg.StatsLiveTTL,
	}, logger)
	if err != nil {
		_ = repos.close()
		return nil, nil, err
	}

	streamSvc := usecase.NewStreamService(statsSvc, usecase.NewSubscriberRegistry(), usecase.StreamServiceConfig{
		Interval: cfg.StreamInterval,
		Jitter:   cfg.StreamJitter,
	}, logger)

	handler := httpapi.NewHandler(fixtureSvc, statsSvc, streamSvc, httpapi.StreamConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		APIKey:             cfg.APIKey,
	}, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	cleanup := func(ctx context.Context) error {
		done := make(chan struct{})
		go func() {
			fixtureSvc.Wait()
			close(done)
		}()

		var waitErr error
		select {
		case <-done:
		case <-ctx.Done():
			waitErr = fmt.Errorf("wait for fixture writes: %w", ctx.Err())
		}

		statsSvc.Close()
		return errors.Join(waitErr, repos.close())
	}

	return server, cleanup, nil
}

func openRepositories(cfg config.Config, logger *logging.Logger) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, err
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver, "db_name", dbNameFromURL(cfg.DBURL))

		return repositories{
			fixtures: withFixtureCache(postgres.NewFixtureRepository(db), cfg.FixtureCacheTTL),
			stats:    postgres.NewStatsRepository(db),
			close:    db.Close,
		}, nil
	default:
		logger.Info("storage ready", "driver", config.StorageMemory)

		return repositories{
			fixtures: withFixtureCache(memory.NewFixtureRepository(nil), cfg.FixtureCacheTTL),
			stats:    memory.NewStatsRepository(),
			close:    func() error { return nil },
		}, nil
	}
}

func withFixtureCache(next fixture.Repository, ttl time.Duration) fixture.Repository {
	if ttl <= 0 {
		return next
	}
	return cache.NewFixtureRepository(next, ttl)
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
