package http_fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/gbp-leads/internal/repository"
	"go.uber.org/zap"
)

const testUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

func TestFetch_SendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Hello</body></html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(testUA, 5*time.Second, zap.NewNop())
	body, err := fetcher.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html><body>Hello</body></html>", body)
	assert.Equal(t, testUA, gotUA)
}

func TestFetch_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(testUA, 5*time.Second, zap.NewNop())
	_, err := fetcher.Fetch(context.Background(), server.URL)

	assert.ErrorIs(t, err, repository.ErrBadStatus)
}

func TestFetch_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewHTTPFetcher(testUA, 5*time.Second, zap.NewNop())
	_, err := fetcher.Fetch(context.Background(), url)

	assert.ErrorIs(t, err, repository.ErrFetchFailed)
}

func TestFetch_NoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(testUA, 5*time.Second, zap.NewNop())
	_, err := fetcher.Fetch(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
