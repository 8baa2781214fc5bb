package scorecard

import (
	"errors"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/live-cricket/internal/domain/matchstats"
)

// ErrStructure is returned when the page lacks the score region entirely.
var ErrStructure = errors.New("score region not found in document")

// ParseMatchStats assembles a stats projection from a detail page. ID is left
// empty for the caller to fill in.
func ParseMatchStats(doc *goquery.Document) (matchstats.MatchStats, error) {
	if doc == nil || doc.Find(selScoreWrapper).Length() == 0 {
		return matchstats.MatchStats{}, ErrStructure
	}

	team1, team2 := parseTeams(doc)
	return matchstats.MatchStats{
		Team1: team1,
		Team2: team2,
		OnBatting: [2]matchstats.PlayerSnapshot{
			ParsePlayerSnapshot(doc, 0),
			ParsePlayerSnapshot(doc, 1),
		},
		RunRate:         ParseRunRate(doc),
		Summary:         ParseSummary(doc),
		IsLive:          !IsMatchComplete(doc),
		MatchCommentary: ParseCommentary(doc),
		KeyStats:        ParseKeyStats(doc),
		TournamentName:  ParseTournamentName(doc),
		MatchName:       ParseMatchName(doc),
	}, nil
}

// parseTeams reads the two score lines. A finished match lists both sides in
// equal rows; a live one shows the side in the field greyed out above the
// batting side.
func parseTeams(doc *goquery.Document) (matchstats.TeamInnings, matchstats.TeamInnings) {
	wrapper := doc.Find(selScoreWrapper)

	completed := wrapper.Find(selCompletedTeam)
	if completed.Length() >= 2 {
		return ParseTeamInnings(completed.Eq(0).Text(), false),
			ParseTeamInnings(completed.Eq(1).Text(), false)
	}

	return ParseTeamInnings(wrapper.Find(selPreviousTeam).First().Text(), false),
		ParseTeamInnings(wrapper.Find(selBattingTeam).First().Text(), true)
}

// ParsePlayerSnapshot reads the batter at index. The name zone starts with a
// header cell; the numeric zone holds runs and balls pairs per batter.
func ParsePlayerSnapshot(doc *goquery.Document, index int) matchstats.PlayerSnapshot {
	if doc == nil || index < 0 {
		return matchstats.PlayerSnapshot{}
	}

	panel := doc.Find(selBatterPanel).First()
	numbers := panel.Find(selPlayerNumber)
	return matchstats.PlayerSnapshot{
		Name:  textOf(panel.Find(selPlayerName).Eq(index + 1)),
		Runs:  textOf(numbers.Eq(2 * index)),
		Balls: textOf(numbers.Eq(2*index + 1)),
	}
}

// ParseRunRate reads the current and required rate fragments.
func ParseRunRate(doc *goquery.Document) matchstats.RunRate {
	if doc == nil {
		return matchstats.RunRate{}
	}

	fragments := doc.Find(selScoreWrapper).Find(selRunRate)
	return matchstats.RunRate{
		CRR: taggedRate(textOf(fragments.Eq(0)), "CRR"),
		RRR: taggedRate(textOf(fragments.Eq(1)), "RRR"),
	}
}

func taggedRate(fragment, tag string) float64 {
	label, value, ok := strings.Cut(fragment, ":")
	if !ok || !strings.EqualFold(strings.TrimSpace(label), tag) {
		return 0
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return rate
}

// ParseCommentary walks commentary lines in page order. Ball-by-ball lines use
// the narrower column and are paired with the next over number; full-width
// lines carry no over.
func ParseCommentary(doc *goquery.Document) []matchstats.CommentaryEntry {
	if doc == nil {
		return nil
	}

	overs := doc.Find(selOverNumber)
	out := make([]matchstats.CommentaryEntry, 0, doc.Find(selCommentary).Length())
	overIdx := 0
	doc.Find(selCommentary).Each(func(_ int, s *goquery.Selection) {
		hasOver := s.HasClass(classHasOver)
		entry := matchstats.CommentaryEntry{
			Commentary: textOf(s),
			HasOver:    hasOver,
		}
		if hasOver {
			entry.Over = textOf(overs.Eq(overIdx))
			overIdx++
		}
		if entry.Commentary == "" {
			return
		}
		out = append(out, entry)
	})

	return out
}

// ParseKeyStats zips label and value fragments by position.
func ParseKeyStats(doc *goquery.Document) map[string]string {
	out := make(map[string]string)
	if doc == nil {
		return out
	}

	labels := doc.Find(selKeyStatLabel)
	values := doc.Find(selKeyStatValue)
	n := min(labels.Length(), values.Length())
	for i := 0; i < n; i++ {
		label := strings.TrimSuffix(textOf(labels.Eq(i)), ":")
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		out[label] = textOf(values.Eq(i))
	}

	return out
}

// ParseTournamentName reads the series link from the sub-header.
func ParseTournamentName(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	link := doc.Find(selSeriesLink).First()
	if title, ok := link.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return normalizeSpace(title)
	}
	return textOf(link)
}

func ParseMatchName(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	name := textOf(doc.Find(selMatchHeader).First())
	if before, _, ok := strings.Cut(name, headerNameSuffix); ok {
		name = strings.TrimSpace(before)
	}
	return name
}

func ParseSummary(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return textOf(doc.Find(selStatus).First())
}

// IsMatchComplete reports whether the result banner is present. Innings
// breaks and stumps count as not complete.
func IsMatchComplete(doc *goquery.Document) bool {
	if doc == nil {
		return false
	}
	return doc.Find(selComplete).Length() > 0
}

func textOf(s *goquery.Selection) string {
	if s == nil || s.Length() == 0 {
		return ""
	}
	return normalizeSpace(s.Text())
}
