package scraper

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/live-cricket/internal/platform/logging"
	"github.com/riskibarqy/live-cricket/internal/platform/resilience"
	"github.com/riskibarqy/live-cricket/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; live-cricket/1.0)"
	maxRedirects     = 5
	maxBodySize      = 8 << 20
)

var errTransient = crerr.New("scraper transient failure")

type Config struct {
	Timeout        time.Duration
	UserAgent      string
	MaxRetries     int
	Backoff        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Fetcher downloads HTML pages and hands them back as parsed documents.
type Fetcher struct {
	client     *fasthttp.Client
	timeout    time.Duration
	userAgent  string
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

func NewFetcher(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Fetcher{
		client: &fasthttp.Client{
			Name:                userAgent,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxBodySize,
		},
		timeout:    timeout,
		userAgent:  userAgent,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		logger:     logger.Named("scraper"),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

// Fetch loads url and parses the body. Network failures and non-200 responses
// wrap usecase.ErrUpstreamFetch; an open circuit yields
// usecase.ErrDependencyUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, crerr.Wrap(usecase.ErrUpstreamFetch, "empty url")
	}

	var doc *goquery.Document
	err := f.breaker.Execute(func() error {
		var fetchErr error
		doc, fetchErr = f.fetchWithRetry(ctx, url)
		return fetchErr
	}, isCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		f.logger.WarnContext(ctx, "scraper circuit breaker rejected request", "url", url, "state", string(f.breaker.State()))
		return nil, fmt.Errorf("%w: score source is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := f.fetchOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !crerr.Is(err, errTransient) || attempt == f.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * f.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	f.logger.WarnContext(ctx, "scraper request failed", "url", url, "error", lastErr)
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.SetTimeout(f.requestTimeout(ctx))

	if err := f.client.DoRedirects(req, resp, maxRedirects); err != nil {
		return nil, crerr.Wrapf(markTransient(usecase.ErrUpstreamFetch), "get %s: %v", url, err)
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK {
		cause := usecase.ErrUpstreamFetch
		if isRetryableStatus(status) {
			cause = markTransient(cause)
		}
		return nil, crerr.Wrapf(cause, "get %s: status=%d body=%s", url, status, abbreviateBody(resp.Body()))
	}

	// The reader is consumed before the response goes back to the pool.
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrUpstreamFetch, "read %s: %v", url, err)
	}
	return doc, nil
}

func (f *Fetcher) requestTimeout(ctx context.Context) time.Duration {
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = max(remaining, time.Millisecond)
		}
	}
	return timeout
}

func markTransient(err error) error {
	return crerr.Mark(err, errTransient)
}

func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
