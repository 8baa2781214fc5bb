package usecase

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// DocumentFetcher loads a page and returns it parsed. Implementations fail
// with ErrUpstreamFetch on non-200 responses or network errors.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}
