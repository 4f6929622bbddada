package tracking

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/omnis-dev/omnis/internal/buildinfo"
)

// Sender delivers an event to the recommendation service.
type Sender interface {
	Send(ctx context.Context, ev Event) (Response, error)
}

// Response is what the service answered. It is logged, never acted on.
type Response struct {
	StatusCode int
	Body       string
}

// Client posts interaction events over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient constructs a client for endpoint with a 10 second timeout.
func NewClient(endpoint string, opts ...func(*Client)) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) func(*Client) {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the request timeout on the client's HTTP client.
func WithTimeout(d time.Duration) func(*Client) {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// Send issues POST <endpoint>?token_id=..&recommendation_id=..&action=..
// with an empty body and JSON headers.
func (c *Client) Send(ctx context.Context, ev Event) (Response, error) {
	if err := ev.Validate(); err != nil {
		return Response{}, err
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return Response{}, fmt.Errorf("tracking: parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("token_id", ev.TokenID)
	q.Set("recommendation_id", ev.RecommendationID)
	q.Set("action", string(ev.Action))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), http.NoBody)
	if err != nil {
		return Response{}, fmt.Errorf("tracking: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("tracking: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	out := Response{StatusCode: resp.StatusCode, Body: string(body)}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, fmt.Errorf("tracking: api error %d: %s", resp.StatusCode, out.Body)
	}
	return out, nil
}
