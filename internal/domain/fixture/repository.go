package fixture

import "context"

// Repository persists fixtures keyed by id with MatchURL as the natural key.
type Repository interface {
	List(ctx context.Context) ([]Fixture, error)
	GetByID(ctx context.Context, id string) (Fixture, bool, error)
	GetByURL(ctx context.Context, matchURL string) (Fixture, bool, error)
	// InsertMany creates fixtures whose URL is not stored yet; existing URLs are left untouched.
	InsertMany(ctx context.Context, items []Fixture) error
}
