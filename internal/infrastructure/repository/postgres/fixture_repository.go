package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	qb "github.com/riskibarqy/live-cricket/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) List(ctx context.Context) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureColumns...).From(fixturesTable).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FixtureRepository) GetByID(ctx context.Context, id string) (fixture.Fixture, bool, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *FixtureRepository) GetByURL(ctx context.Context, matchURL string) (fixture.Fixture, bool, error) {
	return r.getOne(ctx, qb.Eq("match_url", fixture.NormalizeURL(matchURL)))
}

func (r *FixtureRepository) getOne(ctx context.Context, cond qb.Condition) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureColumns...).From(fixturesTable).
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build select fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("select fixture: %w", err)
	}
	return row.toDomain(), true, nil
}

// InsertMany writes every fixture in one statement. Rows whose id or URL is
// already stored are skipped by the conflict clause.
func (r *FixtureRepository) InsertMany(ctx context.Context, items []fixture.Fixture) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]fixtureTableModel, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		row := fixtureModelFromDomain(item)
		if _, dup := seen[row.MatchURL]; dup {
			continue
		}
		seen[row.MatchURL] = struct{}{}
		rows = append(rows, row)
	}

	query, args, err := qb.InsertModels(fixturesTable, rows, "ON CONFLICT DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert fixtures query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fixtures: %w", err)
	}
	return nil
}
