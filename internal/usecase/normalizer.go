package usecase

import (
	"time"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
)

const (
	createTimeLayout = "2006-01-02 15:04:05"
	unknownNickname  = "Unknown"
)

// NormalizeComment maps one upstream record onto the internal schema.
// Omitted fields resolve to zero values, and a missing nickname becomes "Unknown".
func NormalizeComment(raw entity.RawComment) entity.Comment {
	author := entity.Author{Nickname: unknownNickname}
	if u := raw.User; u != nil {
		author.UID = u.UID
		author.Username = u.UniqueID
		author.Signature = u.Signature
		if u.Nickname != nil {
			author.Nickname = *u.Nickname
		}
		if u.AvatarThumb != nil && len(u.AvatarThumb.URLList) > 0 {
			author.AvatarURL = u.AvatarThumb.URLList[0]
		}
	}

	return entity.Comment{
		ID:                  raw.CID,
		Text:                raw.Text,
		Author:              author,
		LikeCount:           raw.DiggCount,
		CreateTimeEpoch:     raw.CreateTime,
		CreateTimeFormatted: FormatCreateTime(raw.CreateTime),
		ReplyCount:          raw.ReplyCommentTotal,
		Status:              raw.Status,
	}
}

// NormalizeComments normalizes every record, preserving order.
func NormalizeComments(raws []entity.RawComment) []entity.Comment {
	out := make([]entity.Comment, len(raws))
	for i, raw := range raws {
		out[i] = NormalizeComment(raw)
	}
	return out
}

// FormatCreateTime renders an epoch in local time as YYYY-MM-DD HH:MM:SS.
func FormatCreateTime(epoch int64) string {
	return time.Unix(epoch, 0).Local().Format(createTimeLayout)
}
