package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL      = "https://api.coingecko.com/api/v3"
	defaultCurrency     = "usd"
	defaultAPIKeyHeader = "x-cg-demo-api-key"
	defaultHTTPTimeout  = 10 * time.Second
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("coingecko: http status %d: %s", e.StatusCode, body)
}

// Client wraps access to the CoinGecko-style REST API. It performs no retries;
// retry and fallback policy belongs to callers.
type Client struct {
	http         *resty.Client
	baseURL      string
	currency     string
	apiKey       string
	apiKeyHeader string
	httpClient   *http.Client
	transport    http.RoundTripper
	httpTimeout  time.Duration
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTransport overrides the round tripper, e.g. with a go-vcr recorder.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithBaseURL overrides the default API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithCurrency sets the vs_currency unit.
func WithCurrency(currency string) Option {
	return func(c *Client) {
		if currency = strings.ToLower(strings.TrimSpace(currency)); currency != "" {
			c.currency = currency
		}
	}
}

// WithAPIKey sends key in header on every request. An empty header keeps the default.
func WithAPIKey(header, key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
		if header = strings.TrimSpace(header); header != "" {
			c.apiKeyHeader = header
		}
	}
}

// WithHTTPTimeout bounds each HTTP exchange.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpTimeout = d
		}
	}
}

// NewClient constructs a market-data API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:      defaultBaseURL,
		currency:     defaultCurrency,
		apiKeyHeader: defaultAPIKeyHeader,
		httpTimeout:  defaultHTTPTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient != nil {
		client.http = resty.NewWithClient(client.httpClient)
	} else {
		client.http = resty.New()
		client.http.SetTimeout(client.httpTimeout)
	}
	if client.transport != nil {
		client.http.SetTransport(client.transport)
	}
	client.http.SetBaseURL(client.baseURL)
	client.http.SetHeader("Accept", "application/json")
	return client
}

// Currency returns the configured vs_currency unit.
func (c *Client) Currency() string {
	return c.currency
}

// doGet issues a GET against path. A successful body is decoded into result by
// resty; the JSON content type is forced since some mirrors omit it.
func (c *Client) doGet(ctx context.Context, path string, params map[string]string, result interface{}) error {
	req := c.http.R().SetContext(ctx).SetQueryParams(params)
	if c.apiKey != "" {
		req.SetHeader(c.apiKeyHeader, c.apiKey)
	}
	if result != nil {
		req.SetResult(result).ForceContentType("application/json")
	}
	resp, err := req.Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if resp != nil && resp.IsSuccess() {
			return fmt.Errorf("coingecko: decode %s: %w", path, err)
		}
		return fmt.Errorf("coingecko: request %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return &StatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}
