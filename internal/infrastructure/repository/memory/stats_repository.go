package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
)

type StatsRepository struct {
	mu    sync.RWMutex
	items map[string]matchstats.Record
}

func NewStatsRepository() *StatsRepository {
	return &StatsRepository{items: make(map[string]matchstats.Record)}
}

func (r *StatsRepository) GetByID(_ context.Context, id string) (matchstats.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[id]
	if !ok {
		return matchstats.Record{}, false, nil
	}
	return cloneRecord(record), true, nil
}

func (r *StatsRepository) Upsert(_ context.Context, record matchstats.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[record.ID]; ok && record.CreatedAt.IsZero() {
		record.CreatedAt = existing.CreatedAt
	}
	r.items[record.ID] = cloneRecord(record)
	return nil
}

// cloneRecord copies the reference-typed fields so callers cannot mutate
// stored state.
func cloneRecord(record matchstats.Record) matchstats.Record {
	record.MatchCommentary = append([]matchstats.CommentaryEntry(nil), record.MatchCommentary...)
	record.KeyStats = maps.Clone(record.KeyStats)
	record.Team1 = cloneInnings(record.Team1)
	record.Team2 = cloneInnings(record.Team2)
	return record
}

func cloneInnings(t matchstats.TeamInnings) matchstats.TeamInnings {
	if t.PreviousInnings != nil {
		prev := *t.PreviousInnings
		t.PreviousInnings = &prev
	}
	return t
}
