package postgres

import (
	"time"

	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
)

const fixturesTable = "fixtures"

var fixtureColumns = []string{"id", "match_url", "match_name", "created_at"}

type fixtureTableModel struct {
	ID        string    `db:"id"`
	MatchURL  string    `db:"match_url"`
	MatchName string    `db:"match_name"`
	CreatedAt time.Time `db:"created_at,readonly"`
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:        m.ID,
		MatchURL:  m.MatchURL,
		MatchName: m.MatchName,
		CreatedAt: m.CreatedAt,
	}
}

func fixtureModelFromDomain(item fixture.Fixture) fixtureTableModel {
	return fixtureTableModel{
		ID:        item.ID,
		MatchURL:  fixture.NormalizeURL(item.MatchURL),
		MatchName: item.MatchName,
	}
}
