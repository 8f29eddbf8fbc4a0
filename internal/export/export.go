// Package export renders normalized comments as downloadable files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
)

// Format is a supported export file type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnsupportedFormat is returned for any format other than json or csv.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// utf8BOM lets spreadsheet tools detect the CSV encoding.
const utf8BOM = "\ufeff"

var csvHeader = []string{"Comment ID", "Author", "Username", "Comment Text", "Likes", "Reply Count", "Created Time"}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(name); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// ContentType returns the MIME type of the rendered file.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// FileName returns the attachment name for a video's export.
func (f Format) FileName(videoID string) string {
	if videoID == "" {
		videoID = "unknown"
	}
	return fmt.Sprintf("tiktok_comments_%s.%s", videoID, f)
}

// Write renders comments to w in format f.
func Write(w io.Writer, f Format, comments []entity.Comment) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, comments)
	case FormatCSV:
		return WriteCSV(w, comments)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}

// WriteJSON writes comments as an indented JSON array without HTML escaping.
func WriteJSON(w io.Writer, comments []entity.Comment) error {
	if comments == nil {
		comments = []entity.Comment{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(comments)
}

// WriteCSV writes a BOM-prefixed CSV with one row per comment.
func WriteCSV(w io.Writer, comments []entity.Comment) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, c := range comments {
		record := []string{
			c.ID,
			c.Author.Nickname,
			c.Author.Username,
			c.Text,
			strconv.FormatInt(c.LikeCount, 10),
			strconv.FormatInt(c.ReplyCount, 10),
			c.CreateTimeFormatted,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
