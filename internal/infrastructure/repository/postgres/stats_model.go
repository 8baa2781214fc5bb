package postgres

import (
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
)

const statsTable = "match_stats"

var statsColumns = []string{"id", "payload", "is_live", "created_at", "updated_at"}

// statsTableModel stores the projection as JSONB. is_live is duplicated out
// of the payload so refresh candidates can be queried without decoding.
type statsTableModel struct {
	ID        string    `db:"id"`
	Payload   string    `db:"payload"`
	IsLive    bool      `db:"is_live"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func statsModelFromDomain(record matchstats.Record) (statsTableModel, error) {
	payload, err := sonic.Marshal(record.MatchStats)
	if err != nil {
		return statsTableModel{}, fmt.Errorf("encode stats payload: %w", err)
	}
	return statsTableModel{
		ID:        record.ID,
		Payload:   string(payload),
		IsLive:    record.IsLive,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func (m statsTableModel) toDomain() (matchstats.Record, error) {
	var stats matchstats.MatchStats
	if err := sonic.UnmarshalString(m.Payload, &stats); err != nil {
		return matchstats.Record{}, fmt.Errorf("decode stats payload id=%s: %w", m.ID, err)
	}
	stats.ID = m.ID
	return matchstats.Record{
		MatchStats: stats,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}
