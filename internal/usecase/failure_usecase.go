package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
)

// ErrNoFailureStore is returned when no journal store is configured.
var ErrNoFailureStore = errors.New("no failure journal store configured")

// FailureJournal exposes the recorded fetch failures and the health of their stores.
type FailureJournal interface {
	Find(ctx context.Context, rawURL string) (*entity.FetchFailure, error)
	// Ping returns one entry per configured store, nil when the store is reachable.
	Ping(ctx context.Context) map[string]error
}

type failureUseCase struct {
	stores []repository.FailureRepository
}

// NewFailureJournal queries stores in order; the first store holding a record wins.
func NewFailureJournal(stores []repository.FailureRepository) FailureJournal {
	return &failureUseCase{stores: stores}
}

func (uc *failureUseCase) Find(ctx context.Context, rawURL string) (*entity.FetchFailure, error) {
	if len(uc.stores) == 0 {
		return nil, ErrNoFailureStore
	}
	rawURL = strings.TrimSpace(rawURL)

	var lastErr error = repository.ErrFailureNotFound
	for _, store := range uc.stores {
		failure, err := store.FindByURL(ctx, rawURL)
		if err == nil {
			return failure, nil
		}
		if !errors.Is(err, repository.ErrFailureNotFound) {
			lastErr = err
		}
	}
	return nil, lastErr
}

func (uc *failureUseCase) Ping(ctx context.Context) map[string]error {
	status := make(map[string]error, len(uc.stores))
	for _, store := range uc.stores {
		status[store.Name()] = store.Ping(ctx)
	}
	return status
}
