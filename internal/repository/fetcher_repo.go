package repository

import (
	"context"
	"errors"
)

var (
	ErrFetchFailed = errors.New("failed to fetch thread listing")
	ErrBadStatus   = errors.New("thread listing returned non-2xx status")
)

// PageFetcher retrieves the raw HTML of a listing page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}
