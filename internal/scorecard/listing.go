package scorecard

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/riskibarqy/live-cricket/internal/domain/fixture"
)

// ParseFixtureList reads every match card from the live listing page. Relative
// links are resolved against baseURL. Cards without a link are skipped.
func ParseFixtureList(doc *goquery.Document, baseURL string) []fixture.ScrapedFixture {
	if doc == nil {
		return nil
	}

	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		base = nil
	}

	cards := doc.Find(selListingCard)
	out := make([]fixture.ScrapedFixture, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		link := card.Find(selListingLink).First()
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		name := ""
		if title, ok := link.Attr("title"); ok {
			name = normalizeSpace(title)
		}
		if name == "" {
			name = textOf(link)
		}
		if before, _, ok := strings.Cut(name, headerNameSuffix); ok {
			name = strings.TrimSpace(before)
		}
		name = strings.TrimSuffix(name, ",")

		out = append(out, fixture.ScrapedFixture{
			MatchURL:  fixture.NormalizeURL(resolveURL(base, href)),
			MatchName: name,
		})
	})

	return out
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return strings.TrimSpace(href)
	}
	if base == nil || ref.IsAbs() {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
