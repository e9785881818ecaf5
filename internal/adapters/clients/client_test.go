package clients

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/verse-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/verse-service/internal/platform/config"
)

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:     baseURL,
		ServiceName: "picsum",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Minute,
			HalfOpenLimit: 1,
		},
	}
}

func newTestClient(t *testing.T, cfg *Config) *Client {
	t.Helper()

	c, err := New(cfg)
	require.NoError(t, err)

	c.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }

	return c
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	if err := resp.Body.Close(); err != nil {
		t.Errorf("closing body: %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil)
	require.EqualError(t, err, "config is required")

	cfg := testConfig("https://picsum.photos")
	cfg.ServiceName = ""

	_, err = New(cfg)
	require.EqualError(t, err, "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	cfg := testConfig("https://picsum.photos/")
	cfg.Timeout = 0
	cfg.Retry.MaxAttempts = 0
	cfg.Transport = config.TransportConfig{MaxIdleConns: 7, MaxIdleConnsPerHost: 3, IdleConnTimeout: time.Second}

	c, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, defaultTimeout, c.http.Timeout)
	assert.Equal(t, 1, c.retry.MaxAttempts)
	assert.Equal(t, "picsum", c.Name())
	assert.Equal(t, "https://picsum.photos/1920/1080", c.resolve("1920/1080"))

	transport, ok := c.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, transport.MaxIdleConns)
	assert.Equal(t, 3, transport.MaxIdleConnsPerHost)
	assert.Equal(t, time.Second, transport.IdleConnTimeout)
}

func TestClient_GetPropagatesIDsAndQuery(t *testing.T) {
	var got http.Header
	var gotQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotQuery = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := newTestClient(t, testConfig(server.URL))

	ctx := middleware.ContextWithRequestID(context.Background(), "req-1")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-1")

	resp, err := c.Get(ctx, "/1920/1080", url.Values{"random": {"42"}})
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, "req-1", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-1", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "42", gotQuery.Get("random"))
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		maxAttempts  int
		wantStatus   int
		wantErr      error
		wantAttempts int32
	}{
		{"recovers after server errors", []int{500, 502, 200}, 3, 200, nil, 3},
		{"client error is returned as-is", []int{404}, 3, 404, nil, 1},
		{"gives up after max attempts", []int{503, 503, 503}, 3, 0, ErrMaxRetriesExceeded, 3},
		{"single attempt", []int{500}, 1, 0, ErrMaxRetriesExceeded, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var attempts atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := attempts.Add(1)
				w.WriteHeader(tt.statuses[n-1])
			}))
			defer server.Close()

			cfg := testConfig(server.URL)
			cfg.Retry.MaxAttempts = tt.maxAttempts

			resp, err := newTestClient(t, cfg).Get(context.Background(), "/", nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				closeBody(t, resp)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
			}

			assert.Equal(t, tt.wantAttempts, attempts.Load())
		})
	}
}

func TestClient_NoRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/id/237/1920/1080.jpg", http.StatusFound)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.NoRedirects = true

	resp, err := newTestClient(t, cfg).Get(context.Background(), "/1920/1080", nil)
	require.NoError(t, err)
	closeBody(t, resp)

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/id/237/1920/1080.jpg", resp.Header.Get("Location"))
}

func TestClient_CircuitOpensAndShortCircuits(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2
	c := newTestClient(t, cfg)

	_, err := c.Get(context.Background(), "/", nil)
	require.Error(t, err)
	assert.Equal(t, StateClosed, c.CircuitState())

	_, err = c.Get(context.Background(), "/", nil)
	require.Error(t, err)
	assert.Equal(t, StateOpen, c.CircuitState())

	_, err = c.Get(context.Background(), "/", nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CanceledContext(t *testing.T) {
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, testConfig(server.URL)).Get(ctx, "/", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Backoff(t *testing.T) {
	cfg := testConfig("https://picsum.photos")
	cfg.Retry = config.RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.25,
	}

	c := newTestClient(t, cfg)

	assert.InDelta(t, float64(100*time.Millisecond), float64(c.backoff(0)), float64(25*time.Millisecond))
	assert.InDelta(t, float64(200*time.Millisecond), float64(c.backoff(1)), float64(50*time.Millisecond))
	assert.InDelta(t, float64(400*time.Millisecond), float64(c.backoff(2)), float64(100*time.Millisecond))
	assert.LessOrEqual(t, c.backoff(10), time.Second+time.Second/4)

	c.retry.JitterFactor = 0
	assert.Equal(t, time.Second, c.backoff(10))
}

type fakeNetError struct{ timeout bool }

func (e fakeNetError) Error() string   { return "fake net error" }
func (e fakeNetError) Timeout() bool   { return e.timeout }
func (e fakeNetError) Temporary() bool { return false }

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"net timeout", fakeNetError{timeout: true}, true},
		{"net non-timeout", fakeNetError{}, false},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryable(tt.err))
		})
	}
}
