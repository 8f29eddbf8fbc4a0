package repository

import (
	"errors"
	"fmt"
)

var (
	ErrUpstreamTimeout    = errors.New("upstream request timed out")
	ErrUpstreamConnection = errors.New("upstream connection failed")
	ErrUpstreamStatus     = errors.New("upstream returned non-200 status")
	ErrUpstreamOther      = errors.New("upstream request failed")
)

// UpstreamErrorKind classifies a failed upstream call.
type UpstreamErrorKind string

const (
	KindTimeout           UpstreamErrorKind = "timeout"
	KindConnectionFailure UpstreamErrorKind = "connection_failure"
	KindHTTPStatus        UpstreamErrorKind = "http_status"
	KindOther             UpstreamErrorKind = "other"
)

// UpstreamError is the only error type returned by a CommentPageFetcher.
type UpstreamError struct {
	Kind       UpstreamErrorKind
	StatusCode int    // set for KindHTTPStatus
	Detail     string // body prefix for KindHTTPStatus, cause message otherwise
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		if e.Detail == "" {
			return fmt.Sprintf("HTTP %d", e.StatusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	case KindTimeout:
		return "upstream request timed out: " + e.Detail
	case KindConnectionFailure:
		return "upstream connection failed: " + e.Detail
	default:
		return "upstream request failed: " + e.Detail
	}
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *UpstreamError) Is(target error) bool {
	switch e.Kind {
	case KindTimeout:
		return target == ErrUpstreamTimeout
	case KindConnectionFailure:
		return target == ErrUpstreamConnection
	case KindHTTPStatus:
		return target == ErrUpstreamStatus
	default:
		return target == ErrUpstreamOther
	}
}
