package entity

// VideoResult is the outcome of collecting comments for one requested URL.
type VideoResult struct {
	URL           string    `json:"url"`
	VideoID       *string   `json:"video_id"`
	Success       bool      `json:"success"`
	Error         *string   `json:"error"`
	TotalComments int       `json:"total_comments"`
	Comments      []Comment `json:"comments"`
}

// BatchResult aggregates the results of one batch, in deduplicated input order.
type BatchResult struct {
	TotalVideos      int           `json:"total_videos"`
	SuccessfulVideos int           `json:"successful_videos"`
	TotalComments    int           `json:"total_comments"`
	Videos           []VideoResult `json:"videos"`
}

// NewFailedVideoResult builds a failed result. videoID may be empty when extraction failed.
func NewFailedVideoResult(url, videoID, reason string) VideoResult {
	r := VideoResult{
		URL:      url,
		Error:    &reason,
		Comments: []Comment{},
	}
	if videoID != "" {
		r.VideoID = &videoID
	}
	return r
}

// NewSuccessfulVideoResult builds a successful result from normalized comments.
func NewSuccessfulVideoResult(url, videoID string, comments []Comment) VideoResult {
	if comments == nil {
		comments = []Comment{}
	}
	return VideoResult{
		URL:           url,
		VideoID:       &videoID,
		Success:       true,
		TotalComments: len(comments),
		Comments:      comments,
	}
}
