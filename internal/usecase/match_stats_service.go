package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
	"github.com/riskibarqy/live-cricket/internal/platform/logging"
	"github.com/riskibarqy/live-cricket/internal/scorecard"
	"golang.org/x/sync/singleflight"
)

const defaultScrapeWorkers = 8

// FixtureSource resolves fixtures for a match id, with AllMatchesID meaning
// every live fixture.
type FixtureSource interface {
	GetMatches(ctx context.Context, matchID string) ([]fixture.Fixture, error)
}

type MatchStatsServiceConfig struct {
	MaxWorkers int
	// LiveTTL is how long a live record is served before it is scraped
	// again. Zero serves stored records indefinitely.
	LiveTTL time.Duration
}

// MatchStatsService serves match stats from storage and scrapes the detail
// page on a miss, writing the result back before returning it.
type MatchStatsService struct {
	fixtures FixtureSource
	stats    matchstats.Repository
	fetcher  DocumentFetcher
	logger   *logging.Logger
	liveTTL  time.Duration
	pool     *ants.Pool
	flight   singleflight.Group
	now      func() time.Time
}

func NewMatchStatsService(
	fixtures FixtureSource,
	stats matchstats.Repository,
	fetcher DocumentFetcher,
	cfg MatchStatsServiceConfig,
	logger *logging.Logger,
) (*MatchStatsService, error) {
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = defaultScrapeWorkers
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create scrape worker pool: %w", err)
	}

	return &MatchStatsService{
		fixtures: fixtures,
		stats:    stats,
		fetcher:  fetcher,
		logger:   logger.Named("match-stats-service"),
		liveTTL:  max(cfg.LiveTTL, 0),
		pool:     pool,
		now:      time.Now,
	}, nil
}

// Close stops the worker pool. Calls made after Close fail.
func (s *MatchStatsService) Close() {
	s.pool.Release()
}

// GetMatchStats returns stats for one fixture, or for every live fixture when
// matchID is AllMatchesID.
func (s *MatchStatsService) GetMatchStats(ctx context.Context, matchID string) ([]matchstats.MatchStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatsService.GetMatchStats")
	defer span.End()

	if err := ValidateMatchID(matchID); err != nil {
		return nil, err
	}
	if matchID == AllMatchesID {
		return s.allMatchStats(ctx)
	}

	items, err := s.fixtures.GetMatches(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	stats, err := s.statsFor(ctx, items[0])
	if err != nil {
		return nil, err
	}
	return []matchstats.MatchStats{stats}, nil
}

// allMatchStats fans out one task per fixture. A fixture whose stats cannot
// be produced is logged and left out. When every fixture fails the first
// failure is returned.
func (s *MatchStatsService) allMatchStats(ctx context.Context) ([]matchstats.MatchStats, error) {
	const location = "MatchStatsService | GetMatchStats"

	items, err := s.fixtures.GetMatches(ctx, AllMatchesID)
	if err != nil {
		return nil, err
	}

	type slot struct {
		stats matchstats.MatchStats
		ok    bool
	}
	results := make([]slot, len(items))

	var (
		workers  sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for i, item := range items {
		workers.Add(1)
		if err := s.pool.Submit(func() {
			defer workers.Done()

			stats, err := s.statsFor(ctx, item)
			if err != nil {
				s.logger.WarnContext(ctx, "skip fixture stats", "location", location, "match_id", item.ID, "error", err)
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				return
			}
			results[i] = slot{stats: stats, ok: true}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, logFailure(ctx, s.logger, location, fmt.Errorf("%w: submit scrape task: %v", ErrDependencyUnavailable, err))
		}
	}
	workers.Wait()

	out := make([]matchstats.MatchStats, 0, len(items))
	for _, res := range results {
		if res.ok {
			out = append(out, res.stats)
		}
	}
	if len(out) == 0 {
		// Every fixture failed; surface the cause rather than an empty result.
		if firstErr != nil {
			return nil, firstErr
		}
		return nil, fmt.Errorf("%w: no fixture produced stats", ErrNoMatchesFound)
	}
	return out, nil
}

// statsFor is cache-aside over the stats repository with write-through on a
// miss or a stale live record. Concurrent misses for one fixture share a
// single scrape.
func (s *MatchStatsService) statsFor(ctx context.Context, item fixture.Fixture) (matchstats.MatchStats, error) {
	const location = "MatchStatsService | statsFor"

	record, found, err := s.stats.GetByID(ctx, item.ID)
	if err != nil {
		return matchstats.MatchStats{}, logFailure(ctx, s.logger, location, fmt.Errorf("%w: get stats: %v", ErrPersistence, err), "match_id", item.ID)
	}
	if found && !record.IsStale(s.now(), s.liveTTL) {
		return record.Stats(), nil
	}

	// The shared scrape outlives any single caller; each caller stops waiting
	// on its own cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(item.ID, func() (any, error) {
		return s.refresh(flightCtx, item, record, found)
	})

	select {
	case <-ctx.Done():
		return matchstats.MatchStats{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return matchstats.MatchStats{}, res.Err
		}
		stats, _ := res.Val.(matchstats.MatchStats)
		return stats, nil
	}
}

func (s *MatchStatsService) refresh(
	ctx context.Context,
	item fixture.Fixture,
	previous matchstats.Record,
	found bool,
) (matchstats.MatchStats, error) {
	stats, err := s.scrapeDetail(ctx, item.MatchURL, item.ID)
	if err != nil {
		return matchstats.MatchStats{}, err
	}
	if item.MatchName != "" {
		stats.MatchName = item.MatchName
	}

	now := s.now().UTC()
	record := matchstats.Record{MatchStats: stats, CreatedAt: now, UpdatedAt: now}
	if found && !previous.CreatedAt.IsZero() {
		record.CreatedAt = previous.CreatedAt
	}
	if err := s.stats.Upsert(ctx, record); err != nil {
		return matchstats.MatchStats{}, logFailure(ctx, s.logger, "MatchStatsService | refresh", fmt.Errorf("%w: upsert stats: %v", ErrPersistence, err), "match_id", item.ID)
	}
	return stats, nil
}

// scrapeDetail fetches and parses one fixture's detail page and stamps the
// fixture id on the result.
func (s *MatchStatsService) scrapeDetail(ctx context.Context, matchURL, matchID string) (matchstats.MatchStats, error) {
	const location = "MatchStatsService | scrapeDetail"

	doc, err := s.fetcher.Fetch(ctx, matchURL)
	if err != nil {
		return matchstats.MatchStats{}, logFailure(ctx, s.logger, location, err, "url", matchURL, "match_id", matchID)
	}

	stats, err := scorecard.ParseMatchStats(doc)
	if err != nil {
		if errors.Is(err, scorecard.ErrStructure) {
			err = fmt.Errorf("%w: %s: %v", ErrParseStructure, matchURL, err)
		}
		return matchstats.MatchStats{}, logFailure(ctx, s.logger, location, err, "url", matchURL, "match_id", matchID)
	}
	stats.ID = matchID
	return stats, nil
}
