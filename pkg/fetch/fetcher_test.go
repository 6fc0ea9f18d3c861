package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrismah84/ai-competitive-intel/pkg/domain"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte("<html><body>listing page</body></html>"))
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(5*time.Second, "intel-test/1.0", 10*time.Millisecond)
		body, err := fetcher.Fetch(context.Background(), domain.Source{Name: "OpenAI", URL: server.URL})
		require.NoError(t, err)
		assert.Contains(t, string(body), "listing page")
		assert.Equal(t, "intel-test/1.0", gotUA)
	})

	t.Run("non-success status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(5*time.Second, "intel-test/1.0", 10*time.Millisecond)
		body, err := fetcher.Fetch(context.Background(), domain.Source{Name: "OpenAI", URL: server.URL})
		require.Error(t, err)
		assert.Nil(t, body)

		var fetchErr *domain.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, "OpenAI", fetchErr.Source)
		assert.Equal(t, "http_status:503", fetchErr.Reason)
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		fetcher := NewHTTPFetcher(20*time.Millisecond, "intel-test/1.0", time.Millisecond)
		body, err := fetcher.Fetch(context.Background(), domain.Source{Name: "Meta AI", URL: server.URL})
		require.Error(t, err)
		assert.Nil(t, body)

		var fetchErr *domain.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, "Meta AI", fetchErr.Source)
		assert.Equal(t, domain.ReasonTimeout, fetchErr.Reason)
	})

	t.Run("connection failure", func(t *testing.T) {
		// a server that is already closed refuses connections
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		fetcher := NewHTTPFetcher(time.Second, "intel-test/1.0", time.Millisecond)
		_, err := fetcher.Fetch(context.Background(), domain.Source{Name: "OpenAI", URL: url})
		require.Error(t, err)

		var fetchErr *domain.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, domain.ReasonConnectionFailed, fetchErr.Reason)
	})

	t.Run("invalid url", func(t *testing.T) {
		fetcher := NewHTTPFetcher(time.Second, "intel-test/1.0", time.Millisecond)
		_, err := fetcher.Fetch(context.Background(), domain.Source{Name: "OpenAI", URL: "not-a-valid-url"})
		require.Error(t, err)

		var fetchErr *domain.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, domain.ReasonConnectionFailed, fetchErr.Reason)
	})
}

func TestHTTPFetcher_RateLimit(t *testing.T) {
	var times []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		times = append(times, time.Now())
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	interval := 100 * time.Millisecond
	fetcher := NewHTTPFetcher(5*time.Second, "intel-test/1.0", interval)
	src := domain.Source{Name: "OpenAI", URL: server.URL}

	for i := 0; i < 3; i++ {
		_, err := fetcher.Fetch(context.Background(), src)
		require.NoError(t, err)
	}

	require.Len(t, times, 3)
	// consecutive requests to the same host must be at least the configured
	// interval apart, with a small allowance for timer slack
	for i := 1; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		assert.GreaterOrEqual(t, gap, interval-10*time.Millisecond, "request %d too close to previous", i)
	}
}

func TestHTTPFetcher_RateLimitPerHost(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	server1 := httptest.NewServer(handler)
	defer server1.Close()
	server2 := httptest.NewServer(handler)
	defer server2.Close()

	// a long interval per host must not delay the first request to another host
	fetcher := NewHTTPFetcher(5*time.Second, "intel-test/1.0", 10*time.Second)

	started := time.Now()
	_, err := fetcher.Fetch(context.Background(), domain.Source{Name: "A", URL: server1.URL})
	require.NoError(t, err)
	_, err = fetcher.Fetch(context.Background(), domain.Source{Name: "B", URL: server2.URL})
	require.NoError(t, err)

	assert.Less(t, time.Since(started), 2*time.Second)
}
