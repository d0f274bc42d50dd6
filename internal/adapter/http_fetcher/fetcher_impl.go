package http_fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/gbp-leads/internal/repository"
	"go.uber.org/zap"
)

// maxBodySize caps the listing page we are willing to read.
const maxBodySize = 10 << 20

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

// NewHTTPFetcher creates a fetcher that issues a single GET per call with
// the given User-Agent. No retries are attempted.
func NewHTTPFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

var _ repository.PageFetcher = (*HTTPFetcher)(nil)

// Fetch returns the response body of url as text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", repository.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", repository.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned %d", repository.ErrBadStatus, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", repository.ErrFetchFailed, err)
	}

	f.logger.Debug("fetched thread listing",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)
	return string(body), nil
}
