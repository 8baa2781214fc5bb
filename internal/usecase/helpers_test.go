package usecase

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const (
	testBaseURL    = "https://www.cricbuzz.com"
	testLivePath   = "/cricket-match/live-scores"
	testListingURL = testBaseURL + testLivePath
)

func documentFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// listingHTML renders a live listing with one card per path. Each path is
// also used as the card title.
func listingHTML(paths ...string) string {
	var buf strings.Builder
	buf.WriteString("<html><body>")
	for _, path := range paths {
		fmt.Fprintf(&buf, `<div class="cb-mtch-lst"><h3><a class="text-hvr-underline" href="%s" title="%s">%s</a></h3></div>`, path, path, path)
	}
	buf.WriteString("</body></html>")
	return buf.String()
}

func detailHTML(summary string, complete bool) string {
	status := "cb-text-inprogress"
	if complete {
		status = "cb-text-complete"
	}
	return `<html><body>
<h1 class="cb-nav-hdr">Header Name - Live</h1>
<div class="cb-nav-subhdr"><a href="/cricket-series/1/test-series">Test Series</a></div>
<div class="cb-scrs-wrp">
  <div class="cb-text-gray cb-font-16">Australia 310</div>
  <span class="cb-font-20 text-bold">India 245/6 (45.2)</span>
  <span class="cb-font-12 cb-text-gray">CRR: 5.40</span>
  <div class="` + status + `">` + summary + `</div>
</div>
</body></html>`
}

// sequenceIDs hands out predictable valid ids.
type sequenceIDs struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDs) NewID(_ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	return fmt.Sprintf("Fixture%09d", g.next), nil
}
