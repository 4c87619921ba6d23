package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"

	mediaTypeV3 = "application/vnd.github.v3+json"
)

// Doer executes a prepared HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Requester issues a request decorated with the GitHub API headers.
type Requester interface {
	Do(ctx context.Context, method, url string, header http.Header) (*http.Response, error)
}

// Client issues requests against the GitHub REST API. Every request carries
// the versioned JSON Accept header and, when a credential is configured,
// an Authorization header. Status codes are left to the caller.
type Client struct {
	doer Doer
	// credential is never logged or exposed.
	credential string
	logger     *log.Logger
}

var _ Requester = (*Client)(nil)

type clientOptions struct {
	httpClient     *http.Client
	timeout        time.Duration
	ratePerSecond  float64
	secondaryLimit time.Duration
	logger         *log.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithRateLimit admits at most rps requests per second. Callers block until
// a token is available or their context is done. Zero disables the limit.
func WithRateLimit(rps float64) ClientOption {
	return func(o *clientOptions) {
		o.ratePerSecond = rps
	}
}

// WithSecondaryRateLimitWaiter makes the transport sleep through GitHub's
// secondary rate limits, up to maxSleep per occurrence.
func WithSecondaryRateLimitWaiter(maxSleep time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.secondaryLimit = maxSleep
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// NewClient creates a Client. An empty credential issues unauthenticated
// requests, which GitHub subjects to a much lower rate limit.
func NewClient(credential string, opts ...ClientOption) (*Client, error) {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard, "", 0)
	}

	httpClient := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		httpClient = &copied
	}
	if o.timeout > 0 {
		httpClient.Timeout = o.timeout
	}

	if o.secondaryLimit > 0 {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		waiter, err := github_ratelimit.NewRateLimitWaiter(base, github_ratelimit.WithSingleSleepLimit(o.secondaryLimit, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		httpClient.Transport = waiter
	}

	var doer Doer = httpClient
	if o.ratePerSecond > 0 {
		doer = newLimitedDoer(doer, o.ratePerSecond)
	}

	return &Client{
		doer:       doer,
		credential: credential,
		logger:     o.logger,
	}, nil
}

// Do sends a request to url. The caller's headers are kept; the API headers
// are set on top of them and win on conflict. An empty method means GET.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header) (*http.Response, error) {
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if header != nil {
		req.Header = header.Clone()
	}
	req.Header.Set("Accept", mediaTypeV3)
	if c.credential != "" {
		req.Header.Set("Authorization", "token "+c.credential)
	}

	c.logger.Printf("  %s %s", method, url)
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	return resp, nil
}

// limitedDoer wraps a Doer with a token bucket.
type limitedDoer struct {
	doer    Doer
	limiter *rate.Limiter
}

func newLimitedDoer(doer Doer, rps float64) *limitedDoer {
	return &limitedDoer{
		doer:    doer,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Do blocks until the limiter admits the request.
func (d *limitedDoer) Do(r *http.Request) (*http.Response, error) {
	if err := d.limiter.Wait(r.Context()); err != nil {
		return nil, fmt.Errorf("waiting for request limiter: %w", err)
	}
	return d.doer.Do(r)
}
