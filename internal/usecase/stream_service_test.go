package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
)

type stubStats struct {
	calls atomic.Int32
	// failOn makes the nth call (1-based) fail with err.
	failOn int32
	err    error
}

func (s *stubStats) GetMatchStats(_ context.Context, matchID string) ([]matchstats.MatchStats, error) {
	n := s.calls.Add(1)
	if s.failOn > 0 && n == s.failOn {
		return nil, s.err
	}
	return []matchstats.MatchStats{{ID: matchID, Summary: "live"}}, nil
}

func newStreamServiceForTest(stats StatsSource) *StreamService {
	service := NewStreamService(stats, NewSubscriberRegistry(), StreamServiceConfig{Interval: 5 * time.Millisecond}, nil)
	return service
}

const streamMatchID = "Fixture000000001"

func TestStreamService_EmitsImmediatelyAndCancels(t *testing.T) {
	t.Parallel()

	service := newStreamServiceForTest(&stubStats{})
	service.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emitted := make(chan []matchstats.MatchStats, 1)
	done := make(chan struct{})
	var (
		state StreamState
		err   error
	)
	go func() {
		defer close(done)
		state, err = service.Subscribe(ctx, streamMatchID, func(_ context.Context, stats []matchstats.MatchStats) error {
			emitted <- stats
			return nil
		})
	}()

	select {
	case stats := <-emitted:
		if len(stats) != 1 || stats[0].ID != streamMatchID {
			t.Fatalf("unexpected first snapshot: %+v", stats)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected an immediate first snapshot")
	}

	if snap := service.Registry().Snapshot(); snap.Total != 1 || snap.ByMatch[streamMatchID] != 1 {
		t.Fatalf("expected one registered subscriber, got %+v", snap)
	}

	cancel()
	<-done

	if state != StreamStateCancelled || err != nil {
		t.Fatalf("expected cancelled with nil error, got state=%s err=%v", state, err)
	}
	if snap := service.Registry().Snapshot(); snap.Total != 0 || len(snap.ByMatch) != 0 {
		t.Fatalf("expected registry to drain, got %+v", snap)
	}
}

func TestStreamService_EmitsEveryInterval(t *testing.T) {
	t.Parallel()

	service := newStreamServiceForTest(&stubStats{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var emits atomic.Int32
	state, err := service.Subscribe(ctx, streamMatchID, func(_ context.Context, _ []matchstats.MatchStats) error {
		if emits.Add(1) == 3 {
			cancel()
		}
		return nil
	})
	if state != StreamStateCancelled || err != nil {
		t.Fatalf("expected cancelled with nil error, got state=%s err=%v", state, err)
	}
	if got := emits.Load(); got != 3 {
		t.Fatalf("expected three snapshots, got %d", got)
	}
}

func TestStreamService_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name    string
		stats   *stubStats
		emitErr error
	}{
		{name: "initial fetch", stats: &stubStats{failOn: 1, err: ErrUpstreamFetch}},
		{name: "periodic fetch", stats: &stubStats{failOn: 2, err: ErrParseStructure}},
		{name: "emit", stats: &stubStats{}, emitErr: boom},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			service := newStreamServiceForTest(tc.stats)
			state, err := service.Subscribe(context.Background(), streamMatchID, func(_ context.Context, _ []matchstats.MatchStats) error {
				return tc.emitErr
			})
			if state != StreamStateErrored {
				t.Fatalf("expected errored state, got %s", state)
			}

			want := tc.emitErr
			if want == nil {
				want = tc.stats.err
			}
			if !errors.Is(err, want) {
				t.Fatalf("expected %v, got %v", want, err)
			}
			if snap := service.Registry().Snapshot(); snap.Total != 0 {
				t.Fatalf("expected registry to drain after error, got %+v", snap)
			}
		})
	}
}

func TestStreamService_RejectsInvalidID(t *testing.T) {
	t.Parallel()

	stats := &stubStats{}
	service := newStreamServiceForTest(stats)
	state, err := service.Subscribe(context.Background(), "not-an-id", func(context.Context, []matchstats.MatchStats) error {
		t.Fatalf("emit must not be called")
		return nil
	})
	if state != StreamStateErrored || !errors.Is(err, ErrInvalidMatchID) {
		t.Fatalf("expected invalid id error, got state=%s err=%v", state, err)
	}
	if stats.calls.Load() != 0 {
		t.Fatalf("expected no stats fetch for invalid id")
	}
	if snap := service.Registry().Snapshot(); snap.Total != 0 {
		t.Fatalf("expected untouched registry, got %+v", snap)
	}
}

func TestStreamService_JitterStaysInBounds(t *testing.T) {
	t.Parallel()

	service := NewStreamService(&stubStats{}, nil, StreamServiceConfig{Interval: time.Millisecond, Jitter: 2 * time.Millisecond}, nil)
	var bounds []int64
	service.randN = func(n int64) int64 {
		bounds = append(bounds, n)
		return n - 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var emits int
	_, _ = service.Subscribe(ctx, streamMatchID, func(context.Context, []matchstats.MatchStats) error {
		if emits++; emits == 2 {
			cancel()
		}
		return nil
	})

	if len(bounds) == 0 {
		t.Fatalf("expected jitter to be sampled")
	}
	for _, n := range bounds {
		if n != int64(2*time.Millisecond) {
			t.Fatalf("unexpected jitter bound: %d", n)
		}
	}
}

func TestSubscriberRegistry_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	registry := NewSubscriberRegistry()
	first := registry.Acquire("Fixture000000001")
	_ = registry.Acquire("Fixture000000001")
	_ = registry.Acquire("Fixture000000002")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first()
		}()
	}
	wg.Wait()

	snap := registry.Snapshot()
	if snap.Total != 2 {
		t.Fatalf("expected total 2 after repeated release, got %d", snap.Total)
	}
	if snap.ByMatch["Fixture000000001"] != 1 || snap.ByMatch["Fixture000000002"] != 1 {
		t.Fatalf("unexpected per-match counts: %+v", snap.ByMatch)
	}
}

func TestSubscriberRegistry_Reset(t *testing.T) {
	t.Parallel()

	registry := NewSubscriberRegistry()
	stale := registry.Acquire("Fixture000000001")
	registry.Reset()

	if snap := registry.Snapshot(); snap.Total != 0 || len(snap.ByMatch) != 0 {
		t.Fatalf("expected empty registry after reset, got %+v", snap)
	}

	fresh := registry.Acquire("Fixture000000001")
	stale()
	if snap := registry.Snapshot(); snap.Total != 1 {
		t.Fatalf("release from before reset must not count, got %+v", snap)
	}
	fresh()
	if snap := registry.Snapshot(); snap.Total != 0 {
		t.Fatalf("expected empty registry, got %+v", snap)
	}
}
