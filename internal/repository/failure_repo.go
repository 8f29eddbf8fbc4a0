package repository

import (
	"context"
	"errors"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
)

// ErrFailureNotFound is returned when no failure has been recorded for a URL.
var ErrFailureNotFound = errors.New("no failure recorded for URL")

// FailureRepository defines the interface for journaling URLs whose comment collection failed.
type FailureRepository interface {
	// Name identifies the store in logs and metrics.
	Name() string
	// SaveOrUpdate creates or updates the record for a failed URL, incrementing its failure count.
	SaveOrUpdate(ctx context.Context, failure *entity.FetchFailure) error
	// FindByURL returns the last recorded failure for a URL or ErrFailureNotFound.
	FindByURL(ctx context.Context, url string) (*entity.FetchFailure, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
