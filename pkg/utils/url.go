package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// videoIDPatterns are tried in order; the first match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/video/(\d+)`),
	regexp.MustCompile(`/v/(\d+)`),
	regexp.MustCompile(`tiktok\.com/.*?/video/(\d+)`),
	regexp.MustCompile(`vm\.tiktok\.com/(\w+)`),
	regexp.MustCompile(`vt\.tiktok\.com/(\w+)`),
}

// HashURL creates a SHA256 hash of a URL string.
// This is useful for creating consistent, safe keys for Redis.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

// ExtractVideoID returns the video identifier captured from rawURL and whether one was found.
// It never touches the network; short links yield their short code.
func ExtractVideoID(rawURL string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(rawURL); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}

// UniqueTrimmed trims every entry, drops empty ones, and removes duplicates keeping first-seen order.
func UniqueTrimmed(rawURLs []string) []string {
	seen := make(map[string]struct{}, len(rawURLs))
	out := make([]string, 0, len(rawURLs))
	for _, u := range rawURLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
