package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/config"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/metrics"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/utils"
)

var (
	ErrEmptyInput      = errors.New("no valid URLs supplied")
	ErrTooManyInputs   = errors.New("too many URLs supplied")
	ErrVideoIDNotFound = errors.New("cannot extract video id")
	ErrInternal        = errors.New("internal failure")
)

const journalTimeout = 5 * time.Second

// BatchOptions bounds a batch request.
type BatchOptions struct {
	MaxURLsPerBatch int
}

// Batch runs comment collection for one or many video URLs.
type Batch interface {
	// Run collects every unique URL and returns results in first-seen input order.
	Run(ctx context.Context, urls []string) (*entity.BatchResult, error)
	// RunSingle collects one URL. A collector failure is reported in the result, not as an error.
	RunSingle(ctx context.Context, rawURL string) (entity.VideoResult, error)
}

type batchUseCase struct {
	collector Collector
	pool      *Pool
	journal   []repository.FailureRepository
	opts      BatchOptions
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewBatchUseCase creates the batch orchestrator. The pool must already be started.
func NewBatchUseCase(
	collector Collector,
	pool *Pool,
	journal []repository.FailureRepository,
	opts BatchOptions,
	m *metrics.Metrics,
	logger *zap.Logger,
) Batch {
	if opts.MaxURLsPerBatch <= 0 {
		opts.MaxURLsPerBatch = config.DefaultMaxURLsPerBatch
	}
	return &batchUseCase{
		collector: collector,
		pool:      pool,
		journal:   journal,
		opts:      opts,
		metrics:   m,
		logger:    logger,
	}
}

func (uc *batchUseCase) Run(ctx context.Context, urls []string) (*entity.BatchResult, error) {
	unique := utils.UniqueTrimmed(urls)
	if len(unique) == 0 {
		return nil, ErrEmptyInput
	}
	if len(unique) > uc.opts.MaxURLsPerBatch {
		return nil, fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyInputs, len(unique), uc.opts.MaxURLsPerBatch)
	}

	start := time.Now()
	log := uc.logger.With(zap.String("batch_id", uuid.NewString()))
	log.Info("batch started", zap.Int("urls", len(unique)))

	// Collectors run to completion even if the caller goes away.
	taskCtx := context.WithoutCancel(ctx)

	videos := make([]entity.VideoResult, len(unique))
	var wg sync.WaitGroup
	for i, rawURL := range unique {
		videoID, ok := utils.ExtractVideoID(rawURL)
		if !ok {
			log.Warn("cannot extract video id", zap.String("url", rawURL))
			videos[i] = entity.NewFailedVideoResult(rawURL, "", ErrVideoIDNotFound.Error())
			uc.metrics.VideosCollectedTotal.WithLabelValues("failure").Inc()
			continue
		}

		wg.Add(1)
		uc.pool.Submit(func() {
			defer wg.Done()
			videos[i] = uc.collect(taskCtx, log, rawURL, videoID)
		})
	}
	wg.Wait()

	result := &entity.BatchResult{TotalVideos: len(videos), Videos: videos}
	for _, v := range videos {
		if v.Success {
			result.SuccessfulVideos++
		}
		result.TotalComments += v.TotalComments
	}

	uc.metrics.BatchDuration.Observe(time.Since(start).Seconds())
	log.Info("batch finished",
		zap.Int("total_videos", result.TotalVideos),
		zap.Int("successful_videos", result.SuccessfulVideos),
		zap.Int("total_comments", result.TotalComments),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (uc *batchUseCase) RunSingle(ctx context.Context, rawURL string) (entity.VideoResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return entity.VideoResult{}, ErrEmptyInput
	}
	videoID, ok := utils.ExtractVideoID(rawURL)
	if !ok {
		return entity.VideoResult{}, ErrVideoIDNotFound
	}

	taskCtx := context.WithoutCancel(ctx)
	done := make(chan entity.VideoResult, 1)
	uc.pool.Submit(func() {
		done <- uc.collect(taskCtx, uc.logger, rawURL, videoID)
	})
	return <-done, nil
}

// collect runs one collector invocation and never panics.
func (uc *batchUseCase) collect(ctx context.Context, log *zap.Logger, rawURL, videoID string) (result entity.VideoResult) {
	log = log.With(zap.String("url", rawURL), zap.String("video_id", videoID))

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrInternal, r)
			log.Error("collector panicked", zap.Error(err))
			result = uc.fail(ctx, log, rawURL, videoID, err)
		}
	}()

	comments, err := uc.collector.Collect(ctx, videoID)
	if err != nil {
		return uc.fail(ctx, log, rawURL, videoID, err)
	}

	uc.metrics.VideosCollectedTotal.WithLabelValues("success").Inc()
	uc.metrics.CommentsCollectedTotal.Add(float64(len(comments)))
	return entity.NewSuccessfulVideoResult(rawURL, videoID, comments)
}

func (uc *batchUseCase) fail(ctx context.Context, log *zap.Logger, rawURL, videoID string, err error) entity.VideoResult {
	uc.metrics.VideosCollectedTotal.WithLabelValues("failure").Inc()
	log.Warn("video collection failed", zap.Error(err))
	uc.record(ctx, log, newFetchFailure(rawURL, videoID, err))
	return entity.NewFailedVideoResult(rawURL, videoID, err.Error())
}

// record writes the failure to every journal store. Store errors never affect the result.
func (uc *batchUseCase) record(ctx context.Context, log *zap.Logger, failure *entity.FetchFailure) {
	if len(uc.journal) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, journalTimeout)
	defer cancel()

	for _, store := range uc.journal {
		if err := store.SaveOrUpdate(ctx, failure); err != nil {
			uc.metrics.JournalErrorsTotal.WithLabelValues(store.Name()).Inc()
			log.Error("failed to journal fetch failure", zap.String("store", store.Name()), zap.Error(err))
		}
	}
}

func newFetchFailure(rawURL, videoID string, err error) *entity.FetchFailure {
	f := &entity.FetchFailure{
		URL:                  rawURL,
		VideoID:              videoID,
		FailureKind:          "internal",
		FailureReason:        err.Error(),
		LastAttemptTimestamp: time.Now(),
	}
	var upErr *repository.UpstreamError
	if errors.As(err, &upErr) {
		f.FailureKind = string(upErr.Kind)
		f.HTTPStatusCode = upErr.StatusCode
	}
	return f
}
