package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	"github.com/riskibarqy/live-cricket/internal/infrastructure/repository/memory"
	fixturemock "github.com/riskibarqy/live-cricket/internal/mocks/domain/fixture"
	usecasemock "github.com/riskibarqy/live-cricket/internal/mocks/usecase"
	"github.com/riskibarqy/live-cricket/internal/platform/id"
	"github.com/stretchr/testify/mock"
)

func newFixtureServiceForTest(fetcher DocumentFetcher, repo fixture.Repository, ids id.Generator) *FixtureService {
	return NewFixtureService(fetcher, repo, ids, FixtureServiceConfig{BaseURL: testBaseURL, LivePath: testLivePath}, nil)
}

func TestFixtureService_Reconcile_AssignsIDsToNewFixtures(t *testing.T) {
	t.Parallel()

	service := newFixtureServiceForTest(nil, memory.NewFixtureRepository(nil), id.NewRandomGenerator())
	fresh := []fixture.ScrapedFixture{
		{MatchURL: "https://example.com/m/1", MatchName: "A vs B"},
		{MatchURL: "https://example.com/m/2", MatchName: "C vs D"},
		{MatchURL: "https://example.com/m/3", MatchName: "E vs F"},
	}

	existing, discovered, err := service.Reconcile(fresh, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(existing) != 0 {
		t.Fatalf("expected no existing fixtures, got %d", len(existing))
	}
	if len(discovered) != len(fresh) {
		t.Fatalf("unexpected discovered count: got=%d want=%d", len(discovered), len(fresh))
	}

	seen := map[string]struct{}{}
	for url, item := range discovered {
		if !id.IsValid(item.ID) {
			t.Fatalf("invalid id %q for %s", item.ID, url)
		}
		if _, dup := seen[item.ID]; dup {
			t.Fatalf("duplicate id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}
}

func TestFixtureService_Reconcile_PreservesKnownIDs(t *testing.T) {
	t.Parallel()

	service := newFixtureServiceForTest(nil, memory.NewFixtureRepository(nil), &sequenceIDs{})
	cached := []fixture.Fixture{{ID: "KnownFixture0001", MatchURL: "https://example.com/m/1", MatchName: "A vs B"}}
	fresh := []fixture.ScrapedFixture{
		{MatchURL: "https://example.com/m/1/", MatchName: "A vs B"},
		{MatchURL: "https://example.com/m/2", MatchName: "C vs D"},
		{MatchURL: "https://example.com/m/2", MatchName: "C vs D"},
	}

	existing, discovered, err := service.Reconcile(fresh, cached)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := existing["https://example.com/m/1"].ID; got != "KnownFixture0001" {
		t.Fatalf("known fixture lost its id: %q", got)
	}
	if len(discovered) != 1 {
		t.Fatalf("duplicate url must be discovered once, got %d", len(discovered))
	}
}

func TestFixtureService_Reconcile_EmptyListing(t *testing.T) {
	t.Parallel()

	service := newFixtureServiceForTest(nil, memory.NewFixtureRepository(nil), &sequenceIDs{})
	_, _, err := service.Reconcile(nil, []fixture.Fixture{{ID: "KnownFixture0001", MatchURL: "https://example.com/m/1"}})
	if !errors.Is(err, ErrNoMatchesFound) {
		t.Fatalf("expected ErrNoMatchesFound, got %v", err)
	}
}

func TestFixtureService_GetMatches_AllKeepsListingOrderAndPersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewFixtureRepository([]fixture.Fixture{
		{ID: "KnownFixture0001", MatchURL: testBaseURL + "/live-cricket-scores/2", MatchName: "known"},
	})
	fetcher := usecasemock.NewDocumentFetcher(t)
	doc := documentFromHTML(t, listingHTML("/live-cricket-scores/1", "/live-cricket-scores/2", "/live-cricket-scores/3"))
	fetcher.On("Fetch", mock.Anything, testListingURL).Return(doc, nil).Twice()

	service := newFixtureServiceForTest(fetcher, repo, &sequenceIDs{})
	got, err := service.GetMatches(ctx, AllMatchesID)
	if err != nil {
		t.Fatalf("get matches: %v", err)
	}
	service.Wait()

	if len(got) != 3 {
		t.Fatalf("unexpected fixture count: got=%d want=3", len(got))
	}
	wantURLs := []string{
		testBaseURL + "/live-cricket-scores/1",
		testBaseURL + "/live-cricket-scores/2",
		testBaseURL + "/live-cricket-scores/3",
	}
	for i, want := range wantURLs {
		if got[i].MatchURL != want {
			t.Fatalf("fixture[%d] url: got=%s want=%s", i, got[i].MatchURL, want)
		}
	}
	if got[1].ID != "KnownFixture0001" {
		t.Fatalf("known fixture id changed: %q", got[1].ID)
	}

	stored, _ := repo.List(ctx)
	if len(stored) != 3 {
		t.Fatalf("discovered fixtures not persisted: %+v", stored)
	}

	again, err := service.GetMatches(ctx, AllMatchesID)
	if err != nil {
		t.Fatalf("get matches again: %v", err)
	}
	for i := range got {
		if again[i].ID != got[i].ID {
			t.Fatalf("fixture[%d] id unstable across cycles: %s != %s", i, again[i].ID, got[i].ID)
		}
	}
}

func TestFixtureService_GetMatches_PersistFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := fixturemock.NewRepository(t)
	fetcher := usecasemock.NewDocumentFetcher(t)

	fetcher.On("Fetch", mock.Anything, testListingURL).
		Return(documentFromHTML(t, listingHTML("/live-cricket-scores/1")), nil).
		Once()
	repo.On("List", mock.Anything).Return([]fixture.Fixture{}, nil).Once()
	repo.On("InsertMany", mock.Anything, mock.AnythingOfType("[]fixture.Fixture")).
		Return(errors.New("connection reset")).
		Once()

	service := newFixtureServiceForTest(fetcher, repo, &sequenceIDs{})
	got, err := service.GetMatches(ctx, AllMatchesID)
	if err != nil {
		t.Fatalf("persist failure must not fail the read path: %v", err)
	}
	service.Wait()

	if len(got) != 1 || got[0].ID != "Fixture000000001" {
		t.Fatalf("unexpected fixtures: %+v", got)
	}
}

func TestFixtureService_GetMatches_FetchFailurePropagates(t *testing.T) {
	t.Parallel()

	fetcher := usecasemock.NewDocumentFetcher(t)
	fetcher.On("Fetch", mock.Anything, testListingURL).
		Return(nil, ErrUpstreamFetch).
		Once()

	service := newFixtureServiceForTest(fetcher, memory.NewFixtureRepository(nil), &sequenceIDs{})
	if _, err := service.GetMatches(context.Background(), AllMatchesID); !errors.Is(err, ErrUpstreamFetch) {
		t.Fatalf("expected ErrUpstreamFetch, got %v", err)
	}
}

func TestFixtureService_GetMatches_ByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := memory.NewFixtureRepository([]fixture.Fixture{
		{ID: "KnownFixture0001", MatchURL: "https://example.com/m/1", MatchName: "A vs B"},
	})
	service := newFixtureServiceForTest(nil, repo, &sequenceIDs{})

	got, err := service.GetMatches(ctx, "KnownFixture0001")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if len(got) != 1 || got[0].MatchName != "A vs B" {
		t.Fatalf("unexpected fixture: %+v", got)
	}

	tests := []struct {
		name    string
		matchID string
		wantErr error
	}{
		{name: "missing", matchID: "MissingFixture01", wantErr: ErrNotFound},
		{name: "too short", matchID: "abc", wantErr: ErrInvalidMatchID},
		{name: "non alphanumeric", matchID: "Known-Fixture-01", wantErr: ErrInvalidMatchID},
		{name: "empty", matchID: "", wantErr: ErrMatchIDRequired},
	}
	for _, tc := range tests {
		if _, err := service.GetMatches(ctx, tc.matchID); !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

// gatedFixtureRepo holds the background insert and the second List call so a
// test can order them against each other.
type gatedFixtureRepo struct {
	*memory.FixtureRepository
	listCalls  atomic.Int32
	listed     chan struct{}
	listGate   chan struct{}
	insertGate chan struct{}
}

func (r *gatedFixtureRepo) List(ctx context.Context) ([]fixture.Fixture, error) {
	items, err := r.FixtureRepository.List(ctx)
	if r.listCalls.Add(1) == 2 {
		close(r.listed)
		<-r.listGate
	}
	return items, err
}

func (r *gatedFixtureRepo) InsertMany(ctx context.Context, items []fixture.Fixture) error {
	<-r.insertGate
	return r.FixtureRepository.InsertMany(ctx, items)
}

func TestFixtureService_GetMatches_KeepsIDWhenInsertLandsDuringList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &gatedFixtureRepo{
		FixtureRepository: memory.NewFixtureRepository(nil),
		listed:            make(chan struct{}),
		listGate:          make(chan struct{}),
		insertGate:        make(chan struct{}),
	}
	fetcher := usecasemock.NewDocumentFetcher(t)
	fetcher.On("Fetch", mock.Anything, testListingURL).
		Return(documentFromHTML(t, listingHTML("/live-cricket-scores/1")), nil).
		Twice()

	service := newFixtureServiceForTest(fetcher, repo, &sequenceIDs{})
	first, err := service.GetMatches(ctx, AllMatchesID)
	if err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	type result struct {
		items []fixture.Fixture
		err   error
	}
	second := make(chan result, 1)
	go func() {
		items, err := service.GetMatches(ctx, AllMatchesID)
		second <- result{items: items, err: err}
	}()

	// The second cycle has read empty storage; now let the first insert land
	// and clear its pending entry before the second cycle reconciles.
	<-repo.listed
	close(repo.insertGate)
	service.Wait()
	close(repo.listGate)

	res := <-second
	if res.err != nil {
		t.Fatalf("second cycle: %v", res.err)
	}
	service.Wait()

	stored, _ := repo.FixtureRepository.List(ctx)
	if len(stored) != 1 {
		t.Fatalf("expected one stored fixture, got %+v", stored)
	}
	if len(res.items) != 1 || res.items[0].ID != first[0].ID || stored[0].ID != first[0].ID {
		t.Fatalf("fixture id changed: first=%s second=%+v stored=%s", first[0].ID, res.items, stored[0].ID)
	}
}

func TestFixtureService_GetMatches_ByIDServesPendingFixture(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := &gatedFixtureRepo{
		FixtureRepository: memory.NewFixtureRepository(nil),
		insertGate:        make(chan struct{}),
	}
	fetcher := usecasemock.NewDocumentFetcher(t)
	fetcher.On("Fetch", mock.Anything, testListingURL).
		Return(documentFromHTML(t, listingHTML("/live-cricket-scores/1")), nil).
		Once()

	service := newFixtureServiceForTest(fetcher, repo, &sequenceIDs{})
	listed, err := service.GetMatches(ctx, AllMatchesID)
	if err != nil {
		t.Fatalf("get matches: %v", err)
	}

	got, err := service.GetMatches(ctx, listed[0].ID)
	if err != nil {
		t.Fatalf("pending fixture should resolve by id: %v", err)
	}
	if got[0].MatchURL != listed[0].MatchURL {
		t.Fatalf("unexpected pending fixture: %+v", got[0])
	}

	close(repo.insertGate)
	service.Wait()
	if _, err := service.GetMatches(ctx, listed[0].ID); err != nil {
		t.Fatalf("stored fixture should resolve by id: %v", err)
	}
}
