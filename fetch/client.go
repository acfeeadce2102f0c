// Package fetch is the HTTP transport that pulls raw candle history from
// an exchange. It does one request per call: no pagination, no retries.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rustyeddy/tfgen/exchange"
)

// ErrTransient marks network or API failures. The caller proceeds as if
// no candles arrived.
var ErrTransient = errors.New("transient fetch error")

// TransientError wraps a failed fetch.
type TransientError struct {
	Exchange string
	Status   int
	Err      error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: http %d: %v", e.Exchange, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Exchange, e.Err)
}

func (e *TransientError) Unwrap() []error { return []error{ErrTransient, e.Err} }

// Request is one history fetch. Start and End are unix seconds.
type Request struct {
	Profile  *exchange.Profile
	Symbol   string
	Interval string
	Start    int64
	End      int64
}

// Fetcher returns the raw response body for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]byte, error) { return f(ctx, req) }

// maxBody bounds how much of a response is read.
const maxBody = 32 << 20

// Client fetches over HTTP.
type Client struct {
	HTTP *http.Client

	// BaseURLs overrides Endpoint.BaseURL per exchange name (lower case).
	BaseURLs map[string]string

	UserAgent string
}

// NewClient returns a Client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: "tfgen",
	}
}

func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.Profile == nil {
		return nil, errors.New("fetch: missing exchange profile")
	}
	if req.Symbol == "" {
		return nil, errors.New("fetch: missing symbol")
	}
	if req.Interval == "" {
		return nil, errors.New("fetch: missing interval")
	}

	name := req.Profile.Name
	base := c.BaseURLs[strings.ToLower(name)]
	u, err := req.Profile.Endpoint.URL(base, req.Symbol, req.Interval, req.Start, req.End)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: build url: %w", name, err)
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: build request: %w", name, err)
	}
	hr.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		hr.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(hr)
	if err != nil {
		return nil, &TransientError{Exchange: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, &TransientError{
			Exchange: name,
			Status:   resp.StatusCode,
			Err:      errors.New(strings.TrimSpace(string(b))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &TransientError{Exchange: name, Err: err}
	}
	return body, nil
}
