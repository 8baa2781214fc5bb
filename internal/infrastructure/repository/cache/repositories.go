package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	basecache "github.com/riskibarqy/live-cricket/internal/platform/cache"
)

const (
	fixtureKeyPrefix = "fixture:"
	fixtureListKey   = fixtureKeyPrefix + "list"
)

type cachedFixture struct {
	items  []fixture.Fixture
	value  fixture.Fixture
	exists bool
}

// FixtureRepository fronts a fixture.Repository with an in-process TTL cache.
// Any insert drops every cached fixture key.
type FixtureRepository struct {
	next  fixture.Repository
	cache *basecache.Store[cachedFixture]
}

func NewFixtureRepository(next fixture.Repository, ttl time.Duration) *FixtureRepository {
	return &FixtureRepository{next: next, cache: basecache.NewStore[cachedFixture](ttl)}
}

func (r *FixtureRepository) List(ctx context.Context) ([]fixture.Fixture, error) {
	v, err := r.cache.GetOrLoad(ctx, fixtureListKey, func(ctx context.Context) (cachedFixture, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return cachedFixture{}, err
		}
		return cachedFixture{items: append([]fixture.Fixture(nil), items...)}, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]fixture.Fixture(nil), v.items...), nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, id string) (fixture.Fixture, bool, error) {
	return r.getOne(ctx, fixtureKeyPrefix+"id:"+id, func(ctx context.Context) (fixture.Fixture, bool, error) {
		return r.next.GetByID(ctx, id)
	})
}

func (r *FixtureRepository) GetByURL(ctx context.Context, matchURL string) (fixture.Fixture, bool, error) {
	matchURL = fixture.NormalizeURL(matchURL)
	return r.getOne(ctx, fixtureKeyPrefix+"url:"+matchURL, func(ctx context.Context) (fixture.Fixture, bool, error) {
		return r.next.GetByURL(ctx, matchURL)
	})
}

func (r *FixtureRepository) InsertMany(ctx context.Context, items []fixture.Fixture) error {
	if err := r.next.InsertMany(ctx, items); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, fixtureKeyPrefix)
	return nil
}

func (r *FixtureRepository) getOne(
	ctx context.Context,
	key string,
	load func(context.Context) (fixture.Fixture, bool, error),
) (fixture.Fixture, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (cachedFixture, error) {
		item, exists, err := load(ctx)
		if err != nil {
			return cachedFixture{}, err
		}
		return cachedFixture{value: item, exists: exists}, nil
	})
	if err != nil {
		return fixture.Fixture{}, false, err
	}
	return v.value, v.exists, nil
}
