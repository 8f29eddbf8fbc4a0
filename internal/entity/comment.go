package entity

// Author is the normalized comment author.
type Author struct {
	UID       string `json:"uid"`
	Nickname  string `json:"nickname"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
	Signature string `json:"signature"`
}

// Comment is the normalized comment returned to callers. Every field is always present.
type Comment struct {
	ID                  string `json:"id"`
	Text                string `json:"text"`
	Author              Author `json:"author"`
	LikeCount           int64  `json:"likes"`
	CreateTimeEpoch     int64  `json:"create_time"`
	CreateTimeFormatted string `json:"create_time_formatted"`
	ReplyCount          int64  `json:"reply_count"`
	Status              int    `json:"status"`
}

// RawComment is one comment record as returned by the upstream API.
// Pointers distinguish an omitted field from a zero value.
type RawComment struct {
	CID               string   `json:"cid"`
	Text              string   `json:"text"`
	User              *RawUser `json:"user"`
	DiggCount         int64    `json:"digg_count"`
	CreateTime        int64    `json:"create_time"`
	ReplyCommentTotal int64    `json:"reply_comment_total"`
	Status            int      `json:"status"`
}

// RawUser is the upstream author record nested in RawComment.
type RawUser struct {
	UID         string    `json:"uid"`
	Nickname    *string   `json:"nickname"`
	UniqueID    string    `json:"unique_id"`
	AvatarThumb *RawImage `json:"avatar_thumb"`
	Signature   string    `json:"signature"`
}

// RawImage is an upstream image reference with candidate URLs.
type RawImage struct {
	URLList []string `json:"url_list"`
}

// CommentPage is one upstream page of comments. It is consumed by the collector and never stored.
type CommentPage struct {
	Comments []RawComment
	Cursor   int64
	HasMore  bool
}
