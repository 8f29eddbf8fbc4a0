package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS fetch_failures (
		id BIGSERIAL PRIMARY KEY,
		url TEXT NOT NULL UNIQUE,
		video_id TEXT NOT NULL DEFAULT '',
		failure_kind TEXT NOT NULL,
		failure_reason TEXT NOT NULL,
		http_status_code INTEGER NOT NULL DEFAULT 0,
		last_attempt_timestamp TIMESTAMPTZ NOT NULL,
		failure_count INTEGER NOT NULL DEFAULT 1
	);
`

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var _ DB = (*pgxpool.Pool)(nil)

// FailureRepoImpl provides a concrete implementation for the FailureRepository interface using PostgreSQL.
type FailureRepoImpl struct {
	db DB
}

// NewFailureRepo creates a new instance of FailureRepoImpl.
func NewFailureRepo(db DB) *FailureRepoImpl {
	return &FailureRepoImpl{db: db}
}

// EnsureSchema creates the fetch_failures table if it does not exist.
func (r *FailureRepoImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

func (r *FailureRepoImpl) Name() string { return "postgres" }

// SaveOrUpdate creates or updates a record for a failed URL.
// It increments the failure_count on conflict.
func (r *FailureRepoImpl) SaveOrUpdate(ctx context.Context, failure *entity.FetchFailure) error {
	query := `
		INSERT INTO fetch_failures (url, video_id, failure_kind, failure_reason, http_status_code, last_attempt_timestamp, failure_count)
		VALUES ($1, $2, $3, $4, $5, $6, 1)
		ON CONFLICT (url) DO UPDATE SET
			video_id = EXCLUDED.video_id,
			failure_kind = EXCLUDED.failure_kind,
			failure_reason = EXCLUDED.failure_reason,
			http_status_code = EXCLUDED.http_status_code,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			failure_count = fetch_failures.failure_count + 1;
	`
	_, err := r.db.Exec(ctx, query,
		failure.URL,
		failure.VideoID,
		failure.FailureKind,
		failure.FailureReason,
		failure.HTTPStatusCode,
		failure.LastAttemptTimestamp,
	)
	return err
}

func (r *FailureRepoImpl) FindByURL(ctx context.Context, url string) (*entity.FetchFailure, error) {
	query := `
		SELECT id, url, video_id, failure_kind, failure_reason, http_status_code, last_attempt_timestamp, failure_count
		FROM fetch_failures
		WHERE url = $1;
	`
	var f entity.FetchFailure
	err := r.db.QueryRow(ctx, query, url).Scan(
		&f.ID,
		&f.URL,
		&f.VideoID,
		&f.FailureKind,
		&f.FailureReason,
		&f.HTTPStatusCode,
		&f.LastAttemptTimestamp,
		&f.FailureCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrFailureNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FailureRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
