package matchstats

import "context"

// Repository stores stats records keyed by the owning fixture id.
type Repository interface {
	GetByID(ctx context.Context, id string) (Record, bool, error)
	// Upsert creates the record or replaces the existing one with the same id.
	Upsert(ctx context.Context, record Record) error
}
