package matchstats

import "time"

// DefaultWickets is reported when the score text has no wicket count,
// meaning the side was bowled out.
const DefaultWickets = "10"

// TeamInnings is one side's score line. Every field is omitted when empty so
// an unparsable line encodes as {}.
type TeamInnings struct {
	IsBatting       bool         `json:"isBatting,omitempty"`
	Name            string       `json:"name,omitempty"`
	Score           string       `json:"score,omitempty"`
	Wickets         string       `json:"wickets,omitempty"`
	Overs           string       `json:"overs,omitempty"`
	PreviousInnings *TeamInnings `json:"previousInnings,omitempty"`
}

func (t TeamInnings) IsZero() bool {
	return t.Name == "" && t.Score == "" && t.Wickets == "" && t.Overs == "" && t.PreviousInnings == nil
}

type PlayerSnapshot struct {
	Name  string `json:"name"`
	Runs  string `json:"runs"`
	Balls string `json:"balls"`
}

type RunRate struct {
	CRR float64 `json:"crr"`
	RRR float64 `json:"rrr"`
}

type CommentaryEntry struct {
	Commentary string `json:"commentary"`
	Over       string `json:"over,omitempty"`
	HasOver    bool   `json:"hasOver"`
}

// MatchStats is the projection served to callers.
type MatchStats struct {
	ID              string            `json:"id"`
	Team1           TeamInnings       `json:"team1"`
	Team2           TeamInnings       `json:"team2"`
	OnBatting       [2]PlayerSnapshot `json:"onBatting"`
	RunRate         RunRate           `json:"runRate"`
	Summary         string            `json:"summary"`
	IsLive          bool              `json:"isLive"`
	MatchCommentary []CommentaryEntry `json:"matchCommentary"`
	KeyStats        map[string]string `json:"keyStats"`
	TournamentName  string            `json:"tournamentName"`
	MatchName       string            `json:"matchName"`
}

// Record is the stored form of a fixture's stats.
type Record struct {
	MatchStats
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats strips storage bookkeeping from the record.
func (r Record) Stats() MatchStats {
	return r.MatchStats
}

// IsStale reports whether a live record is older than ttl. Completed matches
// never go stale and a zero ttl disables refreshing.
func (r Record) IsStale(now time.Time, ttl time.Duration) bool {
	if !r.IsLive || ttl <= 0 {
		return false
	}
	updated := r.UpdatedAt
	if updated.IsZero() {
		updated = r.CreatedAt
	}
	return now.Sub(updated) >= ttl
}
