package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
)

// FixtureRepository keeps fixtures in insertion order with a URL index.
type FixtureRepository struct {
	mu    sync.RWMutex
	items []fixture.Fixture
	byID  map[string]int
	byURL map[string]int
}

func NewFixtureRepository(seed []fixture.Fixture) *FixtureRepository {
	r := &FixtureRepository{
		byID:  make(map[string]int, len(seed)),
		byURL: make(map[string]int, len(seed)),
	}
	for _, item := range seed {
		r.insert(item)
	}
	return r
}

func (r *FixtureRepository) List(_ context.Context) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.items))
	out = append(out, r.items...)
	return out, nil
}

func (r *FixtureRepository) GetByID(_ context.Context, id string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return fixture.Fixture{}, false, nil
	}
	return r.items[idx], true, nil
}

func (r *FixtureRepository) GetByURL(_ context.Context, matchURL string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byURL[fixture.NormalizeURL(matchURL)]
	if !ok {
		return fixture.Fixture{}, false, nil
	}
	return r.items[idx], true, nil
}

func (r *FixtureRepository) InsertMany(_ context.Context, items []fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.insert(item)
	}
	return nil
}

// insert requires r.mu held for writing when called after construction.
func (r *FixtureRepository) insert(item fixture.Fixture) {
	item.MatchURL = fixture.NormalizeURL(item.MatchURL)
	if item.ID == "" || item.MatchURL == "" {
		return
	}
	if _, exists := r.byURL[item.MatchURL]; exists {
		return
	}
	if _, exists := r.byID[item.ID]; exists {
		return
	}

	r.items = append(r.items, item)
	r.byID[item.ID] = len(r.items) - 1
	r.byURL[item.MatchURL] = len(r.items) - 1
}
