package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// noSleep records requested delays without waiting.
func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return ctx.Err()
	}
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{Backoff: time.Second, MaxBackoff: 5 * time.Second}

	assert.Equal(t, time.Duration(0), p.Delay(1))
	assert.Equal(t, time.Second, p.Delay(2))
	assert.Equal(t, 2*time.Second, p.Delay(3))
	assert.Equal(t, 4*time.Second, p.Delay(4))
	assert.Equal(t, 5*time.Second, p.Delay(5), "should cap at MaxBackoff")
}

func TestRetryPolicy_DelayOverflow(t *testing.T) {
	uncapped := RetryPolicy{Backoff: time.Second}
	prev := uncapped.Delay(2)
	for attempt := 3; attempt <= 100; attempt++ {
		d := uncapped.Delay(attempt)
		assert.Positive(t, d, "attempt %d", attempt)
		assert.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		prev = d
	}

	capped := RetryPolicy{Backoff: time.Second, MaxBackoff: time.Minute}
	assert.Equal(t, time.Minute, capped.Delay(100))
}

func TestIdempotent(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete, http.MethodOptions, http.MethodTrace} {
		assert.True(t, Idempotent(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPatch} {
		assert.False(t, Idempotent(m), m)
	}
}

func TestRetryPolicy_Retryable(t *testing.T) {
	p := DefaultRetryPolicy()

	for _, status := range []int{500, 502, 503, 504} {
		assert.True(t, p.Retryable(status), "status %d", status)
	}
	for _, status := range []int{200, 400, 404, 429, 501} {
		assert.False(t, p.Retryable(status), "status %d", status)
	}
}

func TestRetryTransport_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	var delays []time.Duration
	rt := NewRetryTransport(nil, DefaultRetryPolicy(), testLogger())
	rt.sleep = noSleep(&delays)
	client := &http.Client{Transport: rt}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, delays)
}

func TestRetryTransport_ReturnsLastResponseWhenExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var delays []time.Duration
	policy := DefaultRetryPolicy()
	policy.MaxAttempts = 3
	rt := NewRetryTransport(nil, policy, testLogger())
	rt.sleep = noSleep(&delays)
	client := &http.Client{Transport: rt}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryTransport_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	var delays []time.Duration
	rt := NewRetryTransport(nil, DefaultRetryPolicy(), testLogger())
	rt.sleep = noSleep(&delays)
	client := &http.Client{Transport: rt}

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, delays)
}

func TestRetryTransport_ReplaysBody(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var delays []time.Duration
	rt := NewRetryTransport(nil, DefaultRetryPolicy(), testLogger())
	rt.sleep = noSleep(&delays)
	client := &http.Client{Transport: rt}

	req, err := http.NewRequest(http.MethodPut, server.URL, bytes.NewReader([]byte(`[1,2,3]`)))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"[1,2,3]", "[1,2,3]"}, bodies)
}

func TestRetryTransport_DoesNotRetryPost(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var delays []time.Duration
	rt := NewRetryTransport(nil, DefaultRetryPolicy(), testLogger())
	rt.sleep = noSleep(&delays)
	client := &http.Client{Transport: rt}

	resp, err := client.Post(server.URL, "application/json", bytes.NewReader([]byte(`[1]`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, delays)
}

func TestRetryTransport_StopsOnCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rt := NewRetryTransport(nil, DefaultRetryPolicy(), testLogger())
	rt.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	client := &http.Client{Transport: rt}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	_, err = client.Do(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	client := NewClient(DefaultRetryPolicy(), 0, nil)
	assert.Equal(t, 2*time.Minute, client.Timeout)
	assert.IsType(t, &RetryTransport{}, client.Transport)
}
