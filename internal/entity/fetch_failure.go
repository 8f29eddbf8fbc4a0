package entity

import "time"

// FetchFailure mirrors the `fetch_failures` PostgreSQL table and the Redis failure hash.
type FetchFailure struct {
	ID                   int64
	URL                  string
	VideoID              string
	FailureKind          string // "timeout", "connection_failure", "http_status", "other", "internal"
	FailureReason        string
	HTTPStatusCode       int
	LastAttemptTimestamp time.Time
	FailureCount         int
}
