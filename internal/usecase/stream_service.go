package usecase

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
	"github.com/riskibarqy/live-cricket/internal/platform/logging"
)

type StreamState string

const (
	StreamStateConnecting StreamState = "CONNECTING"
	StreamStateStreaming  StreamState = "STREAMING"
	StreamStateCancelled  StreamState = "CANCELLED"
	StreamStateErrored    StreamState = "ERRORED"
)

const (
	defaultStreamInterval = 15 * time.Second
	defaultStreamJitter   = 5 * time.Second
)

// StatsSource is the subset of MatchStatsService a stream polls.
type StatsSource interface {
	GetMatchStats(ctx context.Context, matchID string) ([]matchstats.MatchStats, error)
}

// EmitFunc delivers one snapshot to the subscriber. An error ends the stream.
type EmitFunc func(ctx context.Context, stats []matchstats.MatchStats) error

type SubscriberSnapshot struct {
	Total   int            `json:"total"`
	ByMatch map[string]int `json:"byMatch"`
}

// SubscriberRegistry counts open subscriptions overall and per match id.
type SubscriberRegistry struct {
	mu         sync.Mutex
	total      int
	byMatch    map[string]int
	generation uint64
}

func NewSubscriberRegistry() *SubscriberRegistry {
	return &SubscriberRegistry{byMatch: make(map[string]int)}
}

// Acquire registers one subscriber and returns its release. Release may be
// called any number of times; only the first call counts. Releases issued
// before a Reset are ignored.
func (r *SubscriberRegistry) Acquire(matchID string) (release func()) {
	r.mu.Lock()
	r.total++
	r.byMatch[matchID]++
	generation := r.generation
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			if r.generation != generation {
				return
			}
			r.total--
			if r.byMatch[matchID]--; r.byMatch[matchID] <= 0 {
				delete(r.byMatch, matchID)
			}
		})
	}
}

func (r *SubscriberRegistry) Snapshot() SubscriberSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	byMatch := make(map[string]int, len(r.byMatch))
	for k, v := range r.byMatch {
		byMatch[k] = v
	}
	return SubscriberSnapshot{Total: r.total, ByMatch: byMatch}
}

func (r *SubscriberRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = 0
	r.byMatch = make(map[string]int)
	r.generation++
}

type StreamServiceConfig struct {
	Interval time.Duration
	Jitter   time.Duration
}

// StreamService pushes periodic stats snapshots for one match to a
// subscriber until it goes away.
type StreamService struct {
	stats    StatsSource
	registry *SubscriberRegistry
	logger   *logging.Logger
	interval time.Duration
	jitter   time.Duration
	randN    func(n int64) int64
}

func NewStreamService(stats StatsSource, registry *SubscriberRegistry, cfg StreamServiceConfig, logger *logging.Logger) *StreamService {
	if logger == nil {
		logger = logging.Default()
	}
	if registry == nil {
		registry = NewSubscriberRegistry()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	return &StreamService{
		stats:    stats,
		registry: registry,
		logger:   logger.Named("stream-service"),
		interval: interval,
		jitter:   max(cfg.Jitter, 0),
		randN:    rand.Int64N,
	}
}

func (s *StreamService) Registry() *SubscriberRegistry {
	return s.registry
}

// Subscribe emits a snapshot immediately, then one per jittered interval.
// It returns StreamStateCancelled with a nil error when ctx ends, and
// StreamStateErrored with the cause when a fetch or emit fails.
func (s *StreamService) Subscribe(ctx context.Context, matchID string, emit EmitFunc) (StreamState, error) {
	if err := ValidateMatchID(matchID); err != nil {
		return StreamStateErrored, err
	}

	release := s.registry.Acquire(matchID)
	defer release()

	logger := s.logger.With("match_id", matchID)
	state := StreamStateConnecting
	logger.DebugContext(ctx, "stream state", "state", string(state))

	for {
		next, err := s.tick(ctx, matchID, emit)
		if err != nil {
			logger.DebugContext(ctx, "stream state", "state", string(next), "error", err)
			return next, errOrNil(next, err)
		}
		if next != state {
			state = next
			logger.DebugContext(ctx, "stream state", "state", string(state))
		}

		if !s.sleep(ctx) {
			logger.DebugContext(ctx, "stream state", "state", string(StreamStateCancelled))
			return StreamStateCancelled, nil
		}
	}
}

func (s *StreamService) tick(ctx context.Context, matchID string, emit EmitFunc) (StreamState, error) {
	stats, err := s.stats.GetMatchStats(ctx, matchID)
	if err == nil {
		err = emit(ctx, stats)
	}
	if err == nil {
		return StreamStateStreaming, nil
	}
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return StreamStateCancelled, err
	}
	return StreamStateErrored, err
}

// sleep waits one jittered interval and reports false if ctx ended first.
func (s *StreamService) sleep(ctx context.Context) bool {
	wait := s.interval
	if s.jitter > 0 {
		wait += time.Duration(s.randN(int64(s.jitter)))
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func errOrNil(state StreamState, err error) error {
	if state == StreamStateCancelled {
		return nil
	}
	return err
}
