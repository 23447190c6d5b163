// Package httpx is the single retrying HTTP client used by every network
// call site: feed pagination, metadata lookup, document fetch and news
// search. It paces requests, identifies the client on every request and
// retries 429/503/5xx responses with exponential backoff and jitter.
package httpx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// maxRetryAfter caps how long a server-provided Retry-After header can stall
// a single attempt.
const maxRetryAfter = 60 * time.Second

// Options configure a Client.
type Options struct {
	UserAgent         string
	Timeout           time.Duration
	RetryCount        int
	RetrySleep        time.Duration
	RequestsPerSecond float64
}

// Client wraps http.Client with pacing and retries. Safe for reuse across
// call sites; the scanner is single-threaded so no locking is needed beyond
// what the limiter provides.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	userAgent  string
	retryCount int
	retrySleep time.Duration
	logger     *slog.Logger
}

// New builds a client from options. A nil logger disables logging.
func New(opts Options, logger *slog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	sleep := opts.RetrySleep
	if sleep <= 0 {
		sleep = time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		userAgent:  opts.UserAgent,
		retryCount: opts.RetryCount,
		retrySleep: sleep,
		logger:     logger,
	}
}

// Get fetches the URL and returns the response body. Transport errors and
// retryable statuses are retried up to the configured cap; other non-200
// statuses fail immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	operation := func() ([]byte, error) {
		return c.getOnce(ctx, url)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retrySleep
	policy.MaxInterval = maxRetryAfter
	policy.MaxElapsedTime = 0

	body, err := backoff.RetryWithData(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.retryCount)), ctx))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return body, nil
}

func (c *Client) getOnce(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	// Accept-Encoding stays unset so the transport negotiates gzip and
	// decompresses transparently.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		c.warn("request failed", "url", url, "error", err)
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if retryable(resp.StatusCode) {
		if delay := retryAfter(resp); delay > 0 {
			c.warn("server asked to back off", "url", url, "status", resp.StatusCode, "retry_after", delay)
			sleepCtx(ctx, delay)
		}
		return nil, fmt.Errorf("server returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body from %s", url)
	}
	return body, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// retryAfter parses the Retry-After header, either delta-seconds or an HTTP
// date, bounded by maxRetryAfter.
func retryAfter(resp *http.Response) time.Duration {
	val := resp.Header.Get("Retry-After")
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
		return minDuration(time.Duration(secs)*time.Second, maxRetryAfter)
	}
	if t, err := http.ParseTime(val); err == nil {
		if d := time.Until(t); d > 0 {
			return minDuration(d, maxRetryAfter)
		}
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
