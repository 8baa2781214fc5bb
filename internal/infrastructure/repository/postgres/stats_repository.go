package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
	qb "github.com/riskibarqy/live-cricket/internal/platform/querybuilder"
)

const statsUpsertSuffix = "ON CONFLICT (id) DO UPDATE SET " +
	"payload = EXCLUDED.payload, is_live = EXCLUDED.is_live, updated_at = EXCLUDED.updated_at"

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) GetByID(ctx context.Context, id string) (matchstats.Record, bool, error) {
	query, args, err := qb.Select(statsColumns...).From(statsTable).
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return matchstats.Record{}, false, fmt.Errorf("build select stats query: %w", err)
	}

	var row statsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchstats.Record{}, false, nil
		}
		if isResultFormatMismatch(err) {
			return r.getByIDFallback(ctx, id)
		}
		return matchstats.Record{}, false, fmt.Errorf("select stats id=%s: %w", id, err)
	}

	record, err := row.toDomain()
	if err != nil {
		return matchstats.Record{}, false, err
	}
	return record, true, nil
}

// getByIDFallback reads the payload as text so pgbouncer setups that reject
// binary jsonb results still work.
func (r *StatsRepository) getByIDFallback(ctx context.Context, id string) (matchstats.Record, bool, error) {
	query, args, err := qb.Select("id", "payload::text AS payload", "is_live", "created_at", "updated_at").
		From(statsTable).
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return matchstats.Record{}, false, fmt.Errorf("build select stats fallback query: %w", err)
	}

	var row statsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return matchstats.Record{}, false, nil
		}
		return matchstats.Record{}, false, fmt.Errorf("select stats fallback id=%s: %w", id, err)
	}

	record, err := row.toDomain()
	if err != nil {
		return matchstats.Record{}, false, err
	}
	return record, true, nil
}

// Upsert keeps the stored created_at on conflict.
func (r *StatsRepository) Upsert(ctx context.Context, record matchstats.Record) error {
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	row, err := statsModelFromDomain(record)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel(statsTable, row, statsUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert stats query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert stats id=%s: %w", record.ID, err)
	}
	return nil
}
