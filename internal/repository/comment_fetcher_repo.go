package repository

import (
	"context"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
)

// CommentPageFetcher defines the contract for retrieving one page of comments from upstream.
type CommentPageFetcher interface {
	// FetchPage performs exactly one upstream request. Errors are *UpstreamError.
	FetchPage(ctx context.Context, videoID string, cursor int64, pageSize int) (*entity.CommentPage, error)
}
