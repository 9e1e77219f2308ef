// Package transport provides the HTTP client used to reach the catalog and mirror APIs.
package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RetryPolicy controls how failed requests are retried.
type RetryPolicy struct {
	MaxAttempts int           // Total attempts including the first
	Backoff     time.Duration // Delay before the second attempt
	MaxBackoff  time.Duration // Upper bound on a single delay (0 = unbounded)
	Statuses    []int         // Response statuses that trigger a retry
}

// DefaultRetryPolicy retries server errors five times with one second base backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Backoff:     time.Second,
		MaxBackoff:  time.Minute,
		Statuses: []int{
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// Retryable reports whether a response status should be retried.
func (p RetryPolicy) Retryable(status int) bool {
	for _, s := range p.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Delay returns the wait before attempt n (1-based). Attempt 1 never waits.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 1 || p.Backoff <= 0 {
		return 0
	}
	delay := p.Backoff
	for i := 2; i < attempt; i++ {
		next := delay << 1
		if next <= delay {
			break
		}
		delay = next
		if p.MaxBackoff > 0 && delay >= p.MaxBackoff {
			break
		}
	}
	if p.MaxBackoff > 0 && delay > p.MaxBackoff {
		return p.MaxBackoff
	}
	return delay
}

// Idempotent reports whether requests with the given method may be replayed.
// POST and PATCH get a single attempt.
func Idempotent(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodPut,
		http.MethodDelete, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// RetryTransport is an http.RoundTripper that applies a RetryPolicy.
type RetryTransport struct {
	base   http.RoundTripper
	policy RetryPolicy
	log    *slog.Logger

	// sleep waits for d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryTransport wraps base (http.DefaultTransport when nil) with policy.
func NewRetryTransport(base http.RoundTripper, policy RetryPolicy, log *slog.Logger) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = slog.Default()
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryTransport{
		base:   base,
		policy: policy,
		log:    log.With("component", "transport"),
		sleep:  sleepContext,
	}
}

// RoundTrip executes the request, retrying transport errors and retryable statuses
// for idempotent methods.
// The last response is returned as-is so callers still see a failing status.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var (
		resp *http.Response
		err  error
	)
	maxAttempts := t.policy.MaxAttempts
	if !Idempotent(req.Method) {
		maxAttempts = 1
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := t.policy.Delay(attempt)
			t.log.Debug("retrying request",
				"method", req.Method,
				"url", req.URL.Redacted(),
				"attempt", attempt,
				"delay_ms", delay.Milliseconds(),
			)
			if serr := t.sleep(ctx, delay); serr != nil {
				return nil, serr
			}
		}

		attemptReq, rerr := rewind(req, attempt)
		if rerr != nil {
			return nil, rerr
		}

		resp, err = t.base.RoundTrip(attemptReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		if !t.policy.Retryable(resp.StatusCode) || attempt == maxAttempts {
			return resp, nil
		}
		drain(resp)
	}
	return resp, err
}

// rewind returns a request with a fresh body for attempts after the first.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("retry %s %s: request body cannot be replayed", req.Method, req.URL.Redacted())
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("replay request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewClient returns an http.Client that retries according to policy.
// The timeout bounds a whole call, retries included.
func NewClient(policy RetryPolicy, timeout time.Duration, log *slog.Logger) *http.Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: NewRetryTransport(nil, policy, log),
	}
}
