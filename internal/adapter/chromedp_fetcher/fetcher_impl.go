package chromedp_fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/user/gbp-leads/internal/repository"
	"go.uber.org/zap"
)

// ChromedpFetcher renders the listing in headless Chrome and returns the
// resulting document HTML.
type ChromedpFetcher struct {
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewChromedpFetcher creates a fetcher backed by a local headless Chrome.
func NewChromedpFetcher(userAgent string, pageLoadTimeout time.Duration, logger *zap.Logger) *ChromedpFetcher {
	return &ChromedpFetcher{
		userAgent: userAgent,
		timeout:   pageLoadTimeout,
		logger:    logger,
	}
}

var _ repository.PageFetcher = (*ChromedpFetcher)(nil)

// Fetch navigates to url once and returns the outer HTML of the page.
func (f *ChromedpFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(f.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.timeout)
	defer cancelTimeout()

	start := time.Now()
	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: headless navigation to %s: %w", repository.ErrFetchFailed, url, err)
	}

	f.logger.Debug("rendered thread listing",
		zap.String("url", url),
		zap.Int("bytes", len(html)),
		zap.Duration("took", time.Since(start)),
	)
	return html, nil
}
