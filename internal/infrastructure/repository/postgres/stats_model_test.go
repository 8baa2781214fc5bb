package postgres

import (
	"testing"
	"time"

	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
)

func TestStatsModel_PayloadRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	record := matchstats.Record{
		MatchStats: matchstats.MatchStats{
			ID:      "AbCdEfGhIjKlMnOp",
			Team1:   matchstats.TeamInnings{Name: "Australia", Score: "310", Wickets: "10"},
			IsLive:  true,
			Summary: "India need 66 runs",
			KeyStats: map[string]string{
				"Toss": "Australia (Batting)",
			},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
	}

	row, err := statsModelFromDomain(record)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !row.IsLive {
		t.Fatalf("is_live column not populated")
	}

	got, err := row.toDomain()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != record.ID || got.Summary != record.Summary || got.Team1.Name != "Australia" {
		t.Fatalf("unexpected decoded record: %+v", got)
	}
	if got.KeyStats["Toss"] != "Australia (Batting)" {
		t.Fatalf("unexpected key stats: %#v", got.KeyStats)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created at lost: %s", got.CreatedAt)
	}
}

func TestFixtureModel_NormalizesURL(t *testing.T) {
	row := fixtureModelFromDomain(fixtureFor("https://example.com/m/1/ "))
	if row.MatchURL != "https://example.com/m/1" {
		t.Fatalf("unexpected url: %q", row.MatchURL)
	}
}

func fixtureFor(url string) fixture.Fixture {
	return fixture.Fixture{ID: "AbCdEfGhIjKlMnOp", MatchURL: url, MatchName: "A vs B"}
}
