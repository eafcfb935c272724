// Package feed retrieves paginated documents from a remote WordPress-style
// feed and detects which documents are new against a cached corpus.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/siteassist/siteassist/internal/models"
)

// ErrFetchFailed indicates the remote feed could not be fetched after
// exhausting retries, or answered with a non-transient error.
var ErrFetchFailed = errors.New("feed fetch failed")

const (
	// DefaultPageSize is the per_page value sent to the feed.
	DefaultPageSize = 100

	// fieldProjection limits the response to the fields the pipeline uses.
	fieldProjection = "id,content,title,modified,link"
)

// Config configures a feed client.
type Config struct {
	PageSize    int
	Timeout     time.Duration
	MaxAttempts int
	// RateLimit caps outbound requests per second. Zero disables limiting.
	RateLimit float64
}

// Client pages through a remote feed with bounded retries.
type Client struct {
	http        *http.Client
	limiter     *rate.Limiter
	pageSize    int
	maxAttempts int
}

// NewClient creates a feed client. Zero config fields fall back to
// defaults (page size 100, 30s timeout, 3 attempts).
func NewClient(cfg Config) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		limiter:     limiter,
		pageSize:    cfg.PageSize,
		maxAttempts: cfg.MaxAttempts,
	}
}

// errEndOfPages signals the feed reported an out-of-range page.
var errEndOfPages = errors.New("end of pages")

// Fetch retrieves every published document from the feed, one page at a
// time, until a page comes back empty or out of range. An empty feed
// yields an empty slice and no error; callers decide what zero
// documents means.
func (c *Client) Fetch(ctx context.Context, feedURL string) ([]models.Document, error) {
	var all []models.Document

	for page := 1; ; page++ {
		docs, err := c.fetchPage(ctx, feedURL, page)
		if errors.Is(err, errEndOfPages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrFetchFailed, page, err)
		}
		if len(docs) == 0 {
			break
		}
		all = append(all, docs...)
	}

	slog.Info("fetched feed", "url", feedURL, "documents", len(all))
	return all, nil
}

// fetchPage requests a single page, retrying transient failures with
// exponential backoff. Client errors other than the out-of-range signal
// abort immediately.
func (c *Client) fetchPage(ctx context.Context, feedURL string, page int) ([]models.Document, error) {
	op := func() ([]models.Document, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}
		return c.doPage(ctx, feedURL, page)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	return backoff.RetryWithData(op,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx))
}

func (c *Client) doPage(ctx context.Context, feedURL string, page int) ([]models.Document, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("parse feed url: %w", err))
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(c.pageSize))
	q.Set("status", "publish")
	q.Set("_fields", fieldProjection)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failure: transient, retry.
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		// WordPress answers 400 for a page past the end. Not an error.
		return nil, backoff.Permanent(errEndOfPages)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("server error: %s", resp.Status)
	case resp.StatusCode >= 400:
		return nil, backoff.Permanent(fmt.Errorf("client error: %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode page %d: %w", page, err))
	}

	return docs, nil
}
