package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/config"
)

// CollectorOptions bounds a single video's collection.
type CollectorOptions struct {
	PageSize    int
	MaxComments int
	MaxPages    int
}

// DefaultCollectorOptions mirrors the configuration defaults.
func DefaultCollectorOptions() CollectorOptions {
	return CollectorOptions{
		PageSize:    config.DefaultPageSize,
		MaxComments: config.DefaultMaxCommentsPerVideo,
		MaxPages:    config.DefaultMaxPagesPerVideo,
	}
}

// Collector assembles the complete comment set for one video.
type Collector interface {
	Collect(ctx context.Context, videoID string) ([]entity.Comment, error)
}

type collectorUseCase struct {
	fetcher repository.CommentPageFetcher
	opts    CollectorOptions
	logger  *zap.Logger
}

// NewCollector creates a new single-video collector. Non-positive options fall back to defaults.
func NewCollector(fetcher repository.CommentPageFetcher, opts CollectorOptions, logger *zap.Logger) Collector {
	def := DefaultCollectorOptions()
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	if opts.MaxComments <= 0 {
		opts.MaxComments = def.MaxComments
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = def.MaxPages
	}
	return &collectorUseCase{fetcher: fetcher, opts: opts, logger: logger}
}

// Collect pages through upstream until the data runs out or a cap is reached.
// Any page error discards the pages already fetched and is returned as-is.
func (uc *collectorUseCase) Collect(ctx context.Context, videoID string) ([]entity.Comment, error) {
	var raws []entity.RawComment
	var cursor int64
	pages := 0

	for len(raws) < uc.opts.MaxComments && pages < uc.opts.MaxPages {
		page, err := uc.fetcher.FetchPage(ctx, videoID, cursor, uc.opts.PageSize)
		pages++
		if err != nil {
			uc.logger.Warn("comment page fetch failed, discarding collected pages",
				zap.String("video_id", videoID),
				zap.Int("page", pages),
				zap.Int("discarded", len(raws)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("fetch page %d: %w", pages, err)
		}

		// Empty page ends the stream even when has_more says otherwise.
		if len(page.Comments) == 0 {
			break
		}
		raws = append(raws, page.Comments...)

		cursor = page.Cursor
		if !page.HasMore || cursor == 0 {
			break
		}
	}

	if len(raws) > uc.opts.MaxComments {
		raws = raws[:uc.opts.MaxComments]
	}

	uc.logger.Info("collected comments",
		zap.String("video_id", videoID),
		zap.Int("pages", pages),
		zap.Int("comments", len(raws)),
	)
	return NormalizeComments(raws), nil
}
