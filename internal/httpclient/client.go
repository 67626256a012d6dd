package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/cesargomez89/walkmlb/internal/constants"
)

// Client wraps an http.Client to provide rate limiting and bounded retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   int
	retryBase  time.Duration
}

// Options tunes a Client. Zero values take the package defaults.
type Options struct {
	RequestsPerSecond float64
	Burst             int
	// Attempts is the total number of tries per request, not the number of retries.
	Attempts  int
	RetryBase time.Duration
}

// NewClient creates a new rate-limited, retrying HTTP client.
func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = constants.DefaultRequestRate
	}
	if opts.Burst <= 0 {
		opts.Burst = constants.DefaultRequestBurst
	}
	if opts.Attempts <= 0 {
		opts.Attempts = constants.DefaultRetryCount
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = constants.DefaultRetryBase
	}
	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		attempts:   opts.Attempts,
		retryBase:  opts.RetryBase,
	}
}

// Do executes an HTTP request with rate-limiting and retries. Transport
// errors, 429 and 503 are retried up to the configured attempt count; every
// other response is returned to the caller as is.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		backoffWait := time.Duration(attempt+1) * c.retryBase

		resp, err := c.httpClient.Do(req.WithContext(ctx))
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp)
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)
			if retryAfter > backoffWait {
				backoffWait = retryAfter
			}
		default:
			return resp, nil
		}

		if attempt == c.attempts-1 {
			break
		}
		backoffTimer := time.NewTimer(backoffWait)
		select {
		case <-ctx.Done():
			backoffTimer.Stop()
			return nil, ctx.Err()
		case <-backoffTimer.C:
		}
	}
	return nil, lastErr
}

// parseRetryAfter reads a Retry-After header and returns the duration to wait.
func parseRetryAfter(resp *http.Response) time.Duration {
	ra := resp.Header.Get("Retry-After")
	if ra == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(ra); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(ra); err == nil {
		return time.Until(t)
	}
	return 0
}
