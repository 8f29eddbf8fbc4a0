package response

import (
	"time"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type FetchCommentsResponse struct {
	Success  bool             `json:"success"`
	VideoID  string           `json:"video_id"`
	Total    int              `json:"total"`
	Comments []entity.Comment `json:"comments"`
}

// FetchCommentsBatchResponse is a DTO for a batch run, mirroring entity.BatchResult.
type FetchCommentsBatchResponse struct {
	Success          bool                 `json:"success"`
	TotalVideos      int                  `json:"total_videos"`
	SuccessfulVideos int                  `json:"successful_videos"`
	TotalComments    int                  `json:"total_comments"`
	Videos           []entity.VideoResult `json:"videos"`
}

// FailureResponse is a DTO for a journaled failure, mirroring entity.FetchFailure.
type FailureResponse struct {
	URL                  string    `json:"url"`
	VideoID              string    `json:"video_id,omitempty"`
	FailureKind          string    `json:"failure_kind"`
	FailureReason        string    `json:"failure_reason"`
	HTTPStatusCode       int       `json:"http_status_code,omitempty"`
	LastAttemptTimestamp time.Time `json:"last_attempt_timestamp"`
	FailureCount         int       `json:"failure_count"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Stores    map[string]string `json:"stores,omitempty"`
}
