package httputil

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Doer is satisfied by *http.Client and *RetryClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

// backoff returns the wait before retry n (1-based), capped at MaxDelay.
func (rc RetryConfig) backoff(n int) time.Duration {
	d := float64(rc.InitialDelay)
	for range n - 1 {
		d *= rc.Multiplier
		if d >= float64(rc.MaxDelay) {
			return rc.MaxDelay
		}
	}
	return time.Duration(d)
}

// RetryClient wraps an *http.Client with exponential backoff for
// transient failures. Idempotent requests retry on network errors, 429
// and 5xx. POST and PATCH retry only when the server cannot have acted
// on them: a 429 or a failure to connect.
type RetryClient struct {
	client *http.Client
	config RetryConfig
}

func NewRetryClient(client *http.Client, config RetryConfig) *RetryClient {
	if client == nil {
		client = http.DefaultClient
	}
	def := DefaultRetryConfig()
	if config.MaxRetries == 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.InitialDelay == 0 {
		config.InitialDelay = def.InitialDelay
	}
	if config.MaxDelay == 0 {
		config.MaxDelay = def.MaxDelay
	}
	if config.Multiplier == 0 {
		config.Multiplier = def.Multiplier
	}
	return &RetryClient{client: client, config: config}
}

// Do sends req and retries transient failures. A Retry-After header on
// a 429 or 503 replaces the computed backoff, up to MaxDelay. The final
// response is returned unread so callers can inspect its body.
func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}

		resp, err := c.client.Do(req)
		if attempt == c.config.MaxRetries || !retryable(req.Method, resp, err) {
			return resp, err
		}

		wait := jitter(c.config.backoff(attempt + 1))
		if resp != nil {
			if ra, ok := retryAfter(resp); ok {
				wait = min(ra, c.config.MaxDelay)
			}
			_ = resp.Body.Close()
		}
		slog.Debug("Retrying request", "method", req.Method, "url", req.URL.Redacted(), "attempt", attempt+1, "wait", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func retryable(method string, resp *http.Response, err error) bool {
	idempotent := method != http.MethodPost && method != http.MethodPatch
	if err == nil {
		code := resp.StatusCode
		if code == http.StatusTooManyRequests {
			return true
		}
		return idempotent && code >= 500 && code <= 599
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		netErr net.Error
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	switch {
	case errors.As(err, &dnsErr):
		return true
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return true
	case !idempotent:
		return false
	case errors.As(err, &netErr) && netErr.Timeout():
		return true
	case errors.As(err, &opErr):
		return true
	}
	return false
}

// retryAfter parses a Retry-After value in seconds.
func retryAfter(resp *http.Response) (time.Duration, bool) {
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// jitter spreads d by ±10%.
func jitter(d time.Duration) time.Duration {
	return time.Duration(float64(d) * (0.9 + 0.2*rand.Float64()))
}
