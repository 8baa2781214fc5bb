// Package scorecard turns scraped score pages into structured match records.
//
// Every function here is pure and tolerant of partial markup: a region that
// cannot be read yields a zero value instead of an error, because the rest of
// the page is still useful. Only ParseMatchStats fails, and only when the
// score wrapper itself is missing.
package scorecard

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
	"github.com/riskibarqy/live-cricket/internal/platform/logging"
)

// <name> <score>[/<wickets>][ d][ & <score>[/<wickets>][ d]][ (<overs>[ Ov])]
var inningsRegex = regexp.MustCompile(
	`^\s*(.+?)\s+(\d+)(?:/(\d+))?(?:\s*d)?` +
		`(?:\s*&\s*(\d+)(?:/(\d+))?(?:\s*d)?)?` +
		`(?:\s*\(\s*(\d+(?:\.\d+)?)\s*(?i:ovs?|overs?)?\s*\))?\s*$`,
)

// ParseTeamInnings parses a single score line such as "India 245/6 (45.2)" or
// "England 180/4 & 90/2 (20.0)". Text that does not match yields the zero value.
func ParseTeamInnings(text string, isBatting bool) matchstats.TeamInnings {
	text = normalizeSpace(text)
	m := inningsRegex.FindStringSubmatch(text)
	if m == nil {
		if text != "" {
			logging.Default().Debug("score line did not match innings grammar", "text", text)
		}
		return matchstats.TeamInnings{}
	}

	out := matchstats.TeamInnings{
		IsBatting: isBatting,
		Name:      strings.TrimSpace(m[1]),
		Score:     m[2],
		Wickets:   wicketsOrDefault(m[3]),
	}

	if m[4] != "" {
		out.PreviousInnings = &matchstats.TeamInnings{
			Score:   out.Score,
			Wickets: out.Wickets,
		}
		out.Score = m[4]
		out.Wickets = wicketsOrDefault(m[5])
	}

	if overs, err := strconv.ParseFloat(m[6], 64); err == nil && overs > 0 {
		out.Overs = m[6]
	}

	return out
}

func wicketsOrDefault(v string) string {
	if v == "" {
		return matchstats.DefaultWickets
	}
	return v
}

// normalizeSpace collapses runs of whitespace, including non-breaking spaces.
func normalizeSpace(v string) string {
	return strings.Join(strings.Fields(v), " ")
}
