// Package fetch is the network collaborator for the ingestion
// pipeline. It retrieves raw feed bytes and classifies failures into
// the kinds the pipeline maps onto fetch statuses.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrNotFound marks a 404-equivalent upstream response.
	ErrNotFound = errors.New("feed not found")
	// ErrTransport marks a request that failed before any HTTP status
	// was available (DNS, connection, policy failures).
	ErrTransport = errors.New("cannot access feed")
	// ErrTimeout marks a request that exceeded the fetch deadline.
	ErrTimeout = errors.New("feed request timed out")
)

// maxBodyBytes caps a single feed document read. Feeds larger than
// this would blow any per-feed storage budget anyway.
const maxBodyBytes = 32 << 20

type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	userAgent  string
	timeout    time.Duration
}

func NewClient(httpClient *http.Client, userAgent string, timeout time.Duration) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feed-fetch",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
	})

	return &Client{
		httpClient: httpClient,
		breaker:    breaker,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Run fetches url and returns the raw response bytes.
func (c *Client) Run(ctx context.Context, url string) ([]byte, error) {
	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doFetch(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		return nil, err
	}

	return body.([]byte), nil
}

func (c *Client) doFetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w (404)", ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
