package request

import "github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"

type FetchCommentsRequest struct {
	URL string `json:"url"`
}

type FetchCommentsBatchRequest struct {
	URLs []string `json:"urls"`
}

// ExportRequest carries comments previously returned by a fetch endpoint.
type ExportRequest struct {
	Comments []entity.Comment `json:"comments"`
	VideoID  string           `json:"video_id"`
}
