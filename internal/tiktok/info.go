// Package tiktok holds the platform-specific parts of the downloader:
// which URLs are acceptable, and how the extractor's loosely-populated
// metadata dump is reshaped into the fixed document served to clients.
package tiktok

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"time"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/extractor"
)

// Matches a '#' marker followed by word characters, extended to cover
// the Latin-1 Supplement/Extended-A letters common in European tags.
var hashtagMatcher = regexp.MustCompile(`#([\w\x{00C0}-\x{017F}]+)`)

type (
	// VideoInfo is the derived document returned by the info endpoint.
	// Every field carries an explicit fallback, so no field is ever
	// null/absent regardless of how sparse the extractor's dump was.
	VideoInfo struct {
		VideoID     string          `json:"videoId"`
		Title       string          `json:"title"`
		Description string          `json:"description"`
		Thumbnail   string          `json:"thumbnail"`
		Hashtags    []string        `json:"hashtags"`
		UploadDate  string          `json:"uploadDate"`
		Metadata    VideoMetadata   `json:"metadata"`
		Creator     CreatorInfo     `json:"creator"`
		Stats       EngagementStats `json:"stats"`
		Audio       AudioTrack      `json:"audio"`
		VideoURL    string          `json:"videoUrl"`
		AudioURL    string          `json:"audioUrl"`
	}

	VideoMetadata struct {
		Duration   string `json:"duration"`
		Resolution string `json:"resolution"`
		FPS        int    `json:"fps"`
		Codec      string `json:"codec"`
		Size       string `json:"size"`
	}

	CreatorInfo struct {
		Username string `json:"username"`
		Nickname string `json:"nickname"`
	}

	EngagementStats struct {
		Views     int64 `json:"views"`
		Likes     int64 `json:"likes"`
		Comments  int64 `json:"comments"`
		Shares    int64 `json:"shares"`
		Bookmarks int64 `json:"bookmarks"`
	}

	AudioTrack struct {
		Title  string `json:"title"`
		Artist string `json:"artist"`
		Album  string `json:"album"`
		Size   string `json:"size"`
	}
)

// NewVideoInfo derives the client-facing document from a raw metadata
// dump. sourceURL is the URL the caller originally requested; it is
// percent-encoded into the two self-issued download links.
func NewVideoInfo(raw *extractor.RawMetadata, sourceURL string) *VideoInfo {
	hashtagSource := raw.Description
	if hashtagSource == "" {
		hashtagSource = raw.Title
	}

	size := "N/A"
	if raw.Filesize != nil {
		size = formatSize(*raw.Filesize)
	} else if raw.FilesizeApprox != nil {
		size = formatSize(*raw.FilesizeApprox)
	}

	// The tool does not report the audio stream's size on its own, so
	// estimate it as a tenth of the approximate total.
	audioSize := "N/A"
	if raw.FilesizeApprox != nil {
		audioSize = formatSize(*raw.FilesizeApprox / 10)
	}

	resolution := "1080x1920"
	if raw.Width != nil && raw.Height != nil {
		resolution = fmt.Sprintf("%dx%d", *raw.Width, *raw.Height)
	}

	encodedSource := url.QueryEscape(sourceURL)

	return &VideoInfo{
		VideoID:     raw.ID,
		Title:       firstNonEmpty(raw.Title, "TikTok Video"),
		Description: raw.Description,
		Thumbnail:   raw.Thumbnail,
		Hashtags:    extractHashtags(hashtagSource),
		UploadDate:  formatUploadDate(raw.UploadDate, raw.Timestamp),
		Metadata: VideoMetadata{
			Duration:   formatDuration(raw.Duration),
			Resolution: resolution,
			FPS:        int(math.Round(valueOrDefault(raw.FPS, 0))),
			Codec:      firstNonEmpty(raw.VCodec, "N/A"),
			Size:       size,
		},
		Creator: CreatorInfo{
			Username: firstNonEmpty(raw.UploaderID, raw.Uploader, "unknown"),
			Nickname: firstNonEmpty(raw.Creator, raw.Channel, raw.Uploader, "unknown"),
		},
		Stats: EngagementStats{
			Views:     valueOrDefault(raw.ViewCount, 0),
			Likes:     valueOrDefault(raw.LikeCount, 0),
			Comments:  valueOrDefault(raw.CommentCount, 0),
			Shares:    valueOrDefault(raw.RepostCount, 0),
			Bookmarks: valueOrDefault(raw.CollectCount, 0),
		},
		Audio: AudioTrack{
			Title:  firstNonEmpty(raw.Track, "Original Sound"),
			Artist: firstNonEmpty(raw.Artist, raw.Uploader, "Unknown"),
			Album:  raw.Album,
			Size:   audioSize,
		},
		VideoURL: "/api/tiktok/download/video?url=" + encodedSource,
		AudioURL: "/api/tiktok/download/audio?url=" + encodedSource,
	}
}

// extractHashtags returns the tag text (marker stripped) of every
// hashtag in source, in order of first occurrence. Duplicates are
// preserved.
func extractHashtags(source string) []string {
	matches := hashtagMatcher.FindAllStringSubmatch(source, -1)
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		tags = append(tags, match[1])
	}

	return tags
}

// formatDuration renders a duration in seconds as M:SS. Zero or absent
// durations render as the literal "00:00".
func formatDuration(seconds *float64) string {
	if seconds == nil || *seconds <= 0 {
		return "00:00"
	}

	total := int(*seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func formatSize(bytes int64) string {
	return fmt.Sprintf("%.2f MB", float64(bytes)/1024/1024)
}

// formatUploadDate prefers the tool's 8-digit YYYYMMDD date stamp and
// falls back to the Unix timestamp (seconds). Renders a long-form date
// in UTC so output does not depend on the host timezone.
func formatUploadDate(dateStamp string, timestamp *int64) string {
	if parsed, err := time.Parse("20060102", dateStamp); err == nil {
		return parsed.Format("January 2, 2006")
	}

	if timestamp != nil {
		return time.Unix(*timestamp, 0).UTC().Format("January 2, 2006")
	}

	return "Unknown"
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}

func valueOrDefault[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}

	return *value
}
