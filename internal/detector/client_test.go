package detector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/truthlens/truthlens-api/pkg/httpclient"
	"github.com/truthlens/truthlens-api/pkg/resilience"
)

func newDetectorServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClient_Detect_Success(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Key secret-key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Wireless Headphones Premium over-ear", body["text"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"score":0.82,"sentence_scores":[{"sentence":"x","score":0.9}]}`))
	})

	client := NewClient(Config{URL: server.URL, APIKey: "secret-key"}, nil)
	verdict, err := client.Detect(context.Background(), "Wireless Headphones Premium over-ear")
	require.NoError(t, err)

	score, ok := verdict.Score()
	assert.True(t, ok)
	assert.Equal(t, 0.82, score)
	assert.Len(t, verdict["sentence_scores"], 1)
}

func TestClient_Detect_ConfigurableScheme(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`{"score":0.1}`))
	})

	_, err := NewClient(Config{URL: server.URL, APIKey: "tok", AuthScheme: "Bearer"}, nil).Detect(context.Background(), "text")
	assert.NoError(t, err)
}

func TestClient_Detect_NoKeyOmitsHeader(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg":"missing key"}`))
	})

	_, err := NewClient(Config{URL: server.URL}, nil).Detect(context.Background(), "text")
	require.Error(t, err)

	var httpErr *httpclient.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Equal(t, `detector: HTTP 401: {"msg":"missing key"}`, err.Error())
}

func TestClient_Detect_Failures(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantOutcome string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantOutcome: "http_error",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
			wantOutcome: "decode_error",
		},
		{
			name: "json array instead of object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[0.9]`))
			},
			wantOutcome: "decode_error",
		},
		{
			name: "json null",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`null`))
			},
			wantOutcome: "decode_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newDetectorServer(t, tt.handler)

			verdict, err := NewClient(Config{URL: server.URL, APIKey: "k"}, nil).Detect(context.Background(), "text")
			require.Error(t, err)
			assert.Nil(t, verdict)
			assert.Contains(t, err.Error(), "detector: ")
			assert.Equal(t, tt.wantOutcome, outcome(errors.Unwrap(err)))
		})
	}
}

func TestClient_Detect_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	start := time.Now()
	_, err := NewClient(Config{URL: server.URL, Timeout: 50 * time.Millisecond}, nil).Detect(context.Background(), "text")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_Detect_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(Config{URL: url}, nil).Detect(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, "transport_error", outcome(errors.Unwrap(err)))
}

func TestClient_Detect_SingleAttempt(t *testing.T) {
	var calls int32
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := NewClient(Config{URL: server.URL}, nil).Detect(context.Background(), "text")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Detect_BreakerFailsFast(t *testing.T) {
	var calls int32
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	breaker := resilience.NewCircuitBreaker(resilience.Settings{
		Name:             "detector-test",
		FailureThreshold: 2,
		Timeout:          time.Minute,
	}, resilience.GracefulDegradation("detector"))
	client := NewClient(Config{URL: server.URL}, breaker)

	for i := 0; i < 2; i++ {
		_, err := client.Detect(context.Background(), "text")
		require.Error(t, err)
	}

	_, err := client.Detect(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, "detector: circuit breaker is open", err.Error())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Detect_ThroughClosedBreaker(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"score":0.3}`))
	})
	breaker := resilience.NewCircuitBreaker(resilience.Settings{Name: "detector-ok", FailureThreshold: 1}, nil)

	verdict, err := NewClient(Config{URL: server.URL}, breaker).Detect(context.Background(), "text")
	require.NoError(t, err)
	score, ok := verdict.Score()
	assert.True(t, ok)
	assert.Equal(t, 0.3, score)
}

func newClassifiedBreaker(name string, threshold uint32) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.Settings{
		Name:             name,
		FailureThreshold: threshold,
		Timeout:          time.Minute,
		IsSuccessful:     IsSuccessful,
	}, resilience.GracefulDegradation("detector"))
}

func TestIsSuccessful(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"caller cancelled", &callerDoneError{err: context.Canceled}, true},
		{"caller deadline", &callerDoneError{err: context.DeadlineExceeded}, true},
		{"bad request", &httpclient.HTTPError{StatusCode: http.StatusBadRequest}, true},
		{"payload too large", &httpclient.HTTPError{StatusCode: http.StatusRequestEntityTooLarge}, true},
		{"unauthorized", &httpclient.HTTPError{StatusCode: http.StatusUnauthorized}, false},
		{"forbidden", &httpclient.HTTPError{StatusCode: http.StatusForbidden}, false},
		{"rate limited", &httpclient.HTTPError{StatusCode: http.StatusTooManyRequests}, false},
		{"server error", &httpclient.HTTPError{StatusCode: http.StatusBadGateway}, false},
		{"own timeout", context.DeadlineExceeded, false},
		{"decode", ErrEmptyResponse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSuccessful(tt.err))
		})
	}
}

func TestClient_Detect_CallerCancellationDoesNotTripBreaker(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"score":0.9}`))
	})
	client := NewClient(Config{URL: server.URL}, newClassifiedBreaker("detector-cancel", 5))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := client.Detect(cancelled, "text")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.False(t, client.breaker.IsOpen())

	verdict, err := client.Detect(context.Background(), "text")
	require.NoError(t, err)
	score, ok := verdict.Score()
	assert.True(t, ok)
	assert.Equal(t, 0.9, score)
}

func TestClient_Detect_CallerDeadlineDoesNotTripBreaker(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}
		w.Write([]byte(`{"score":0.2}`))
	})
	client := NewClient(Config{URL: server.URL, Timeout: 5 * time.Second}, newClassifiedBreaker("detector-deadline", 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Detect(ctx, "text")
	require.Error(t, err)
	assert.False(t, client.breaker.IsOpen())
}

func TestClient_Detect_InputRejectionsDoNotTripBreaker(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if len(body["text"]) > 20 {
			http.Error(w, `{"msg":"text too long"}`, http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"score":0.9}`))
	})
	client := NewClient(Config{URL: server.URL}, newClassifiedBreaker("detector-input", 5))

	for i := 0; i < 5; i++ {
		_, err := client.Detect(context.Background(), "this text is far too long for the detector")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 400")
	}
	assert.False(t, client.breaker.IsOpen())

	verdict, err := client.Detect(context.Background(), "short text")
	require.NoError(t, err)
	assert.Equal(t, 0.9, verdict["score"])
}

func TestClient_Detect_DetectorFaultsStillTripBreaker(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		handler http.HandlerFunc
	}{
		{
			name:    "server error",
			timeout: time.Second,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name:    "rate limited",
			timeout: time.Second,
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name:    "client timeout",
			timeout: 30 * time.Millisecond,
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(500 * time.Millisecond):
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newDetectorServer(t, tt.handler)
			client := NewClient(Config{URL: server.URL, Timeout: tt.timeout}, newClassifiedBreaker("detector-fault", 2))

			for i := 0; i < 2; i++ {
				_, err := client.Detect(context.Background(), "text")
				require.Error(t, err)
			}
			assert.True(t, client.breaker.IsOpen())

			_, err := client.Detect(context.Background(), "text")
			assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
		})
	}
}

func TestClient_Detect_FallbackWithoutVerdict(t *testing.T) {
	server := newDetectorServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	breaker := resilience.NewCircuitBreaker(resilience.Settings{
		Name:             "detector-nil-fallback",
		FailureThreshold: 1,
		Timeout:          time.Minute,
	}, func(ctx context.Context, err error) (interface{}, error) {
		return nil, nil
	})
	client := NewClient(Config{URL: server.URL}, breaker)

	_, err := client.Detect(context.Background(), "text")
	require.Error(t, err)
	require.True(t, breaker.IsOpen())

	var verdict Verdict
	assert.NotPanics(t, func() {
		verdict, err = client.Detect(context.Background(), "text")
	})
	assert.Nil(t, verdict)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Contains(t, err.Error(), "detector: ")
}
