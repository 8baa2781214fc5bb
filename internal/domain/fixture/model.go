package fixture

import (
	"strings"
	"time"
)

// Fixture is one tracked match with its stable identity.
type Fixture struct {
	ID        string    `json:"id"`
	MatchURL  string    `json:"matchUrl"`
	MatchName string    `json:"matchName"`
	CreatedAt time.Time `json:"-"`
}

// ScrapedFixture is a listing entry as seen on the source page, before it
// has been assigned an identity.
type ScrapedFixture struct {
	MatchURL  string
	MatchName string
}

// NormalizeURL trims whitespace and a trailing slash so the same page always
// yields the same natural key.
func NormalizeURL(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}
