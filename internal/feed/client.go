package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/omnis-dev/omnis/internal/buildinfo"
)

// Response is the recommendation service reply.
type Response struct {
	Recommendations Payload `json:"recommendations"`
}

// Payload is the nested recommendation result.
type Payload struct {
	Status             string   `json:"status"`
	UserDataFound      bool     `json:"user_data_found"`
	ProductRecommended []string `json:"product_recommended"`
}

// Fetcher retrieves the raw recommendation feed for a user.
type Fetcher interface {
	Fetch(ctx context.Context, userID string, topK int) (*Response, error)
}

// Client calls the recommendation service over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient constructs a client for endpoint with a 15 second timeout.
func NewClient(endpoint string, opts ...func(*Client)) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
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

// Fetch issues GET <endpoint>?user_id=<id>&top_k=<k>. Network failures,
// non-2xx statuses and undecodable bodies all wrap ErrTransport.
func (c *Client) Fetch(ctx context.Context, userID string, topK int) (*Response, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: parse endpoint: %w", ErrTransport, err)
	}
	q := u.Query()
	q.Set("user_id", userID)
	q.Set("top_k", strconv.Itoa(topK))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, string(data))
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return &payload, nil
}
