package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/utils"
)

const failureKeyPrefix = "failure:"

// FailureRepoImpl journals fetch failures as one Redis hash per URL that expires after ttl.
type FailureRepoImpl struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFailureRepo creates a new instance of FailureRepoImpl.
func NewFailureRepo(client *redis.Client, ttl time.Duration) *FailureRepoImpl {
	return &FailureRepoImpl{client: client, ttl: ttl}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *FailureRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", failureKeyPrefix, utils.HashURL(url))
}

func (r *FailureRepoImpl) Name() string { return "redis" }

// SaveOrUpdate overwrites the failure details and bumps the counter in one transaction.
// Each write refreshes the expiry.
func (r *FailureRepoImpl) SaveOrUpdate(ctx context.Context, failure *entity.FetchFailure) error {
	key := r.generateKey(failure.URL)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"url", failure.URL,
			"video_id", failure.VideoID,
			"failure_kind", failure.FailureKind,
			"failure_reason", failure.FailureReason,
			"http_status_code", failure.HTTPStatusCode,
			"last_attempt_timestamp", failure.LastAttemptTimestamp.UTC().Format(time.RFC3339Nano),
		)
		pipe.HIncrBy(ctx, key, "failure_count", 1)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	return err
}

func (r *FailureRepoImpl) FindByURL(ctx context.Context, url string) (*entity.FetchFailure, error) {
	fields, err := r.client.HGetAll(ctx, r.generateKey(url)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, repository.ErrFailureNotFound
	}

	failure := &entity.FetchFailure{
		URL:           fields["url"],
		VideoID:       fields["video_id"],
		FailureKind:   fields["failure_kind"],
		FailureReason: fields["failure_reason"],
	}
	if failure.HTTPStatusCode, err = strconv.Atoi(fields["http_status_code"]); err != nil {
		return nil, fmt.Errorf("decode http_status_code: %w", err)
	}
	if failure.FailureCount, err = strconv.Atoi(fields["failure_count"]); err != nil {
		return nil, fmt.Errorf("decode failure_count: %w", err)
	}
	if failure.LastAttemptTimestamp, err = time.Parse(time.RFC3339Nano, fields["last_attempt_timestamp"]); err != nil {
		return nil, fmt.Errorf("decode last_attempt_timestamp: %w", err)
	}
	return failure, nil
}

func (r *FailureRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
