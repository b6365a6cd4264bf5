// Package feed holds the shared HTTP client for the upstream stats hosts.
// Every league rides the same host family, so one client with the league's
// header profile covers all of them.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/penaltybox/officials-stats-service/internal/envelope"
	"github.com/penaltybox/officials-stats-service/internal/retry"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 8 << 20 // 8 MiB; schedule feeds for a full month stay well under this
)

// StatusError reports a non-200 response from the feed host.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("feed: unexpected status %d from %s", e.StatusCode, e.URL)
}

// Client fetches callback-wrapped JSON from the feed hosts.
type Client struct {
	httpClient *http.Client
	retries    *retry.Policy
}

// New creates a feed client with the default per-request timeout. Each
// request is independently bounded; a slow game fetch never holds up its
// siblings beyond its own deadline.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// NewWithRetries creates a feed client that retries transient fetch failures
// with exponential backoff.
func NewWithRetries(maxAttempts int, initialDelay time.Duration) *Client {
	c := New()
	c.retries = retry.NewPolicy(maxAttempts, initialDelay)
	return c
}

// Fetch performs one GET against a feed URL with the league's header profile
// and returns the raw body.
func (c *Client) Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var body []byte

	fetchOnce := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("making request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
			return &StatusError{URL: url, StatusCode: resp.StatusCode}
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		return nil
	}

	if c.retries != nil {
		if err := c.retries.Execute(ctx, fetchOnce); err != nil {
			return nil, err
		}
		return body, nil
	}
	if err := fetchOnce(); err != nil {
		return nil, err
	}
	return body, nil
}

// FetchValue fetches a feed URL and decodes the callback envelope into an
// untyped JSON structure.
func (c *Client) FetchValue(ctx context.Context, url string, headers map[string]string) (interface{}, error) {
	raw, err := c.Fetch(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	return envelope.DecodeValue(raw)
}

// FetchObject fetches a feed URL and decodes the envelope, requiring a JSON
// object payload (the game-summary shape).
func (c *Client) FetchObject(ctx context.Context, url string, headers map[string]string) (map[string]interface{}, error) {
	raw, err := c.Fetch(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	return envelope.DecodeObject(raw)
}
