package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	"github.com/riskibarqy/live-cricket/internal/platform/id"
	"github.com/riskibarqy/live-cricket/internal/platform/logging"
	"github.com/riskibarqy/live-cricket/internal/scorecard"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

type FixtureServiceConfig struct {
	BaseURL  string
	LivePath string
}

// FixtureService scrapes the live listing and keeps fixture identities
// stable across scrape cycles.
type FixtureService struct {
	fetcher    DocumentFetcher
	repo       fixture.Repository
	ids        id.Generator
	logger     *logging.Logger
	baseURL    string
	listingURL string
	now        func() time.Time

	mu      sync.Mutex
	pending map[string]fixture.Fixture
	writes  conc.WaitGroup
}

func NewFixtureService(
	fetcher DocumentFetcher,
	repo fixture.Repository,
	ids id.Generator,
	cfg FixtureServiceConfig,
	logger *logging.Logger,
) *FixtureService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &FixtureService{
		fetcher:    fetcher,
		repo:       repo,
		ids:        ids,
		logger:     logger.Named("fixture-service"),
		baseURL:    baseURL,
		listingURL: joinURL(baseURL, cfg.LivePath),
		now:        time.Now,
		pending:    make(map[string]fixture.Fixture),
	}
}

// GetMatches returns every fixture on the live listing for AllMatchesID, or
// the single stored fixture with the given id.
func (s *FixtureService) GetMatches(ctx context.Context, matchID string) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.GetMatches")
	defer span.End()

	if err := ValidateMatchID(matchID); err != nil {
		return nil, err
	}
	if matchID != AllMatchesID {
		return s.getByID(ctx, matchID)
	}

	const location = "FixtureService | GetMatches"
	doc, err := s.fetcher.Fetch(ctx, s.listingURL)
	if err != nil {
		return nil, logFailure(ctx, s.logger, location, err, "url", s.listingURL)
	}
	fresh := scorecard.ParseFixtureList(doc, s.baseURL)

	// Pending must be read before storage: a write that lands between the two
	// reads is then seen in at least one of them.
	pending := s.pendingSnapshot()
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, logFailure(ctx, s.logger, location, fmt.Errorf("%w: list fixtures: %v", ErrPersistence, err))
	}
	cached := mergePending(stored, pending)

	existing, discovered, err := s.Reconcile(fresh, cached)
	if err != nil {
		return nil, logFailure(ctx, s.logger, location, err, "url", s.listingURL, "scraped", len(fresh))
	}
	s.PersistNew(ctx, discovered)

	out := make([]fixture.Fixture, 0, len(existing)+len(discovered))
	seen := make(map[string]struct{}, len(existing)+len(discovered))
	for _, item := range fresh {
		key := fixture.NormalizeURL(item.MatchURL)
		if _, dup := seen[key]; dup {
			continue
		}
		if match, ok := existing[key]; ok {
			out = append(out, match)
		} else if match, ok := discovered[key]; ok {
			out = append(out, match)
		} else {
			continue
		}
		seen[key] = struct{}{}
	}
	return out, nil
}

func (s *FixtureService) getByID(ctx context.Context, matchID string) ([]fixture.Fixture, error) {
	pending := s.pendingSnapshot()
	item, exists, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, logFailure(ctx, s.logger, "FixtureService | GetMatches", fmt.Errorf("%w: get fixture: %v", ErrPersistence, err), "match_id", matchID)
	}
	if exists {
		return []fixture.Fixture{item}, nil
	}
	for _, candidate := range pending {
		if candidate.ID == matchID {
			return []fixture.Fixture{candidate}, nil
		}
	}
	return nil, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
}

// Reconcile splits a freshly scraped listing into fixtures already known by
// URL, which keep their id, and newly discovered ones, which get a new id.
// Both maps are keyed by normalized match URL. A URL repeated within fresh
// keeps the id assigned on its first occurrence.
func (s *FixtureService) Reconcile(
	fresh []fixture.ScrapedFixture,
	cached []fixture.Fixture,
) (existing, discovered map[string]fixture.Fixture, err error) {
	byURL := make(map[string]fixture.Fixture, len(cached))
	for _, item := range cached {
		byURL[fixture.NormalizeURL(item.MatchURL)] = item
	}

	existing = make(map[string]fixture.Fixture)
	discovered = make(map[string]fixture.Fixture)
	now := s.now().UTC()
	for _, item := range fresh {
		key := fixture.NormalizeURL(item.MatchURL)
		if key == "" {
			continue
		}
		if known, ok := byURL[key]; ok {
			existing[key] = known
			continue
		}
		if _, ok := discovered[key]; ok {
			continue
		}

		newID, genErr := s.ids.NewID(key)
		if genErr != nil {
			return nil, nil, fmt.Errorf("generate fixture id: %w", genErr)
		}
		discovered[key] = fixture.Fixture{
			ID:        newID,
			MatchURL:  key,
			MatchName: item.MatchName,
			CreatedAt: now,
		}
	}

	if len(existing) == 0 && len(discovered) == 0 {
		return nil, nil, fmt.Errorf("%w: listing yielded no fixtures", ErrNoMatchesFound)
	}
	return existing, discovered, nil
}

// PersistNew writes discovered fixtures in the background. Failures are
// logged and dropped; the fixture is rediscovered on a later cycle. Until the
// write finishes the fixtures are served from memory so repeated scrapes
// reuse their ids.
func (s *FixtureService) PersistNew(ctx context.Context, discovered map[string]fixture.Fixture) {
	if len(discovered) == 0 {
		return
	}

	items := make([]fixture.Fixture, 0, len(discovered))
	for _, item := range discovered {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].MatchURL < items[j].MatchURL })

	s.mu.Lock()
	for _, item := range items {
		s.pending[item.MatchURL] = item
	}
	s.mu.Unlock()

	writeCtx := context.WithoutCancel(ctx)
	s.writes.Go(func() {
		defer s.clearPending(items)

		var catcher panics.Catcher
		catcher.Try(func() {
			if err := s.repo.InsertMany(writeCtx, items); err != nil {
				_ = logFailure(writeCtx, s.logger, "FixtureService | PersistNew", fmt.Errorf("%w: insert fixtures: %v", ErrPersistence, err), "count", len(items))
			}
		})
		if recovered := catcher.Recovered(); recovered != nil {
			s.logger.ErrorContext(writeCtx, "persist new fixtures panicked", "location", "FixtureService | PersistNew", "panic", recovered.String())
		}
	})
}

// Wait blocks until every background write has finished.
func (s *FixtureService) Wait() {
	s.writes.Wait()
}

func (s *FixtureService) pendingSnapshot() []fixture.Fixture {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]fixture.Fixture, 0, len(s.pending))
	for _, item := range s.pending {
		out = append(out, item)
	}
	return out
}

// mergePending combines stored fixtures with ones still being written. A
// stored fixture wins over a pending one for the same URL.
func mergePending(stored, pending []fixture.Fixture) []fixture.Fixture {
	if len(pending) == 0 {
		return stored
	}
	out := make([]fixture.Fixture, 0, len(stored)+len(pending))
	out = append(out, pending...)
	return append(out, stored...)
}

func (s *FixtureService) clearPending(items []fixture.Fixture) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if current, ok := s.pending[item.MatchURL]; ok && current.ID == item.ID {
			delete(s.pending, item.MatchURL)
		}
	}
}

func joinURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if parsed, err := url.Parse(path); err == nil && parsed.IsAbs() {
		return path
	}
	return baseURL + "/" + strings.TrimLeft(path, "/")
}
