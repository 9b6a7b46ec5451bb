package tiktok_test

import (
	"net/url"
	"testing"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/extractor"
	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/tiktok"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](value T) *T { return &value }

func Test_NewVideoInfo_DerivesCompleteDocument(t *testing.T) {
	t.Parallel()

	sourceURL := "https://www.tiktok.com/@somebody/video/7293014211234567890"
	raw := &extractor.RawMetadata{
		ID:             "7293014211234567890",
		Title:          "Morning routine",
		Description:    "My morning #routine #2024vibes",
		Thumbnail:      "https://p16-sign.tiktokcdn.example/thumb.webp",
		Uploader:       "somebody",
		UploaderID:     "somebody_id",
		Creator:        "Some Body",
		Duration:       ptr(62.5),
		Width:          ptr(720),
		Height:         ptr(1280),
		FPS:            ptr(29.97),
		VCodec:         "h264",
		Filesize:       ptr(int64(12582912)),
		FilesizeApprox: ptr(int64(10485760)),
		ViewCount:      ptr(int64(150000)),
		LikeCount:      ptr(int64(12000)),
		CommentCount:   ptr(int64(340)),
		RepostCount:    ptr(int64(89)),
		CollectCount:   ptr(int64(45)),
		Timestamp:      ptr(int64(1700000000)),
		UploadDate:     "20240115",
		Track:          "original sound - somebody",
		Artist:         "Some Body",
		Album:          "singles",
	}

	info := tiktok.NewVideoInfo(raw, sourceURL)

	assert.Equal(t, "7293014211234567890", info.VideoID)
	assert.Equal(t, "Morning routine", info.Title)
	assert.Equal(t, "My morning #routine #2024vibes", info.Description)
	assert.Equal(t, []string{"routine", "2024vibes"}, info.Hashtags)

	// The 8-digit date stamp wins over the timestamp
	assert.Equal(t, "January 15, 2024", info.UploadDate)

	assert.Equal(t, "1:02", info.Metadata.Duration)
	assert.Equal(t, "720x1280", info.Metadata.Resolution)
	assert.Equal(t, 30, info.Metadata.FPS)
	assert.Equal(t, "h264", info.Metadata.Codec)
	assert.Equal(t, "12.00 MB", info.Metadata.Size)

	assert.Equal(t, "somebody_id", info.Creator.Username)
	assert.Equal(t, "Some Body", info.Creator.Nickname)

	assert.Equal(t, int64(150000), info.Stats.Views)
	assert.Equal(t, int64(12000), info.Stats.Likes)
	assert.Equal(t, int64(340), info.Stats.Comments)
	assert.Equal(t, int64(89), info.Stats.Shares)
	assert.Equal(t, int64(45), info.Stats.Bookmarks)

	assert.Equal(t, "original sound - somebody", info.Audio.Title)
	assert.Equal(t, "Some Body", info.Audio.Artist)
	assert.Equal(t, "singles", info.Audio.Album)
	assert.Equal(t, "1.00 MB", info.Audio.Size)

	encoded := url.QueryEscape(sourceURL)
	assert.Equal(t, "/api/tiktok/download/video?url="+encoded, info.VideoURL)
	assert.Equal(t, "/api/tiktok/download/audio?url="+encoded, info.AudioURL)
}

func Test_NewVideoInfo_EmptyMetadata_AppliesFallbacks(t *testing.T) {
	t.Parallel()

	info := tiktok.NewVideoInfo(&extractor.RawMetadata{}, "https://www.tiktok.com/@somebody/video/1")

	assert.Equal(t, "TikTok Video", info.Title)
	assert.Equal(t, "", info.Description)
	assert.Equal(t, "", info.Thumbnail)
	assert.NotNil(t, info.Hashtags)
	assert.Empty(t, info.Hashtags)
	assert.Equal(t, "Unknown", info.UploadDate)

	assert.Equal(t, "00:00", info.Metadata.Duration)
	assert.Equal(t, "1080x1920", info.Metadata.Resolution)
	assert.Equal(t, 0, info.Metadata.FPS)
	assert.Equal(t, "N/A", info.Metadata.Codec)
	assert.Equal(t, "N/A", info.Metadata.Size)

	assert.Equal(t, "unknown", info.Creator.Username)
	assert.Equal(t, "unknown", info.Creator.Nickname)

	assert.Equal(t, int64(0), info.Stats.Views)
	assert.Equal(t, int64(0), info.Stats.Likes)
	assert.Equal(t, int64(0), info.Stats.Comments)
	assert.Equal(t, int64(0), info.Stats.Shares)
	assert.Equal(t, int64(0), info.Stats.Bookmarks)

	assert.Equal(t, "Original Sound", info.Audio.Title)
	assert.Equal(t, "Unknown", info.Audio.Artist)
	assert.Equal(t, "", info.Audio.Album)
	assert.Equal(t, "N/A", info.Audio.Size)
}

func Test_NewVideoInfo_HashtagExtraction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary     string
		description string
		title       string
		expected    []string
	}{
		{"tags in order", "Check this #fun #2024tok out", "", []string{"fun", "2024tok"}},
		{"falls back to title when description empty", "", "About #cooking", []string{"cooking"}},
		{"non-empty description suppresses title tags", "no tags here", "#ignored", []string{}},
		{"duplicates preserved", "#go #fun #go", "", []string{"go", "fun", "go"}},
		{"accented letters included", "#café and #münchen", "", []string{"café", "münchen"}},
		{"adjacent tags", "#one#two", "", []string{"one", "two"}},
		{"bare marker ignored", "just a # mark", "", []string{}},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			raw := &extractor.RawMetadata{Title: test.title, Description: test.description}
			info := tiktok.NewVideoInfo(raw, "https://www.tiktok.com/@somebody/video/1")
			assert.Equal(t, test.expected, info.Hashtags)
		})
	}
}

func Test_NewVideoInfo_SizeDerivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary       string
		filesize      *int64
		approx        *int64
		expectedVideo string
		expectedAudio string
	}{
		{"exact size preferred", ptr(int64(5242880)), ptr(int64(10485760)), "5.00 MB", "1.00 MB"},
		{"approximate size when exact missing", nil, ptr(int64(10485760)), "10.00 MB", "1.00 MB"},
		{"exact only leaves audio unknown", ptr(int64(5242880)), nil, "5.00 MB", "N/A"},
		{"nothing reported", nil, nil, "N/A", "N/A"},
		{"fractional rendering", ptr(int64(1234567)), nil, "1.18 MB", "N/A"},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			raw := &extractor.RawMetadata{Filesize: test.filesize, FilesizeApprox: test.approx}
			info := tiktok.NewVideoInfo(raw, "https://www.tiktok.com/@somebody/video/1")
			assert.Equal(t, test.expectedVideo, info.Metadata.Size)
			assert.Equal(t, test.expectedAudio, info.Audio.Size)
		})
	}
}

func Test_NewVideoInfo_UploadDateFallsBackToTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary   string
		dateStamp string
		timestamp *int64
		expected  string
	}{
		{"timestamp only", "", ptr(int64(1700000000)), "November 14, 2023"},
		{"malformed stamp falls back", "2024", ptr(int64(1700000000)), "November 14, 2023"},
		{"impossible month falls back", "20241340", ptr(int64(1700000000)), "November 14, 2023"},
		{"nothing reported", "", nil, "Unknown"},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			raw := &extractor.RawMetadata{UploadDate: test.dateStamp, Timestamp: test.timestamp}
			info := tiktok.NewVideoInfo(raw, "https://www.tiktok.com/@somebody/video/1")
			assert.Equal(t, test.expected, info.UploadDate)
		})
	}
}

func Test_NewVideoInfo_DurationFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary  string
		duration *float64
		expected string
	}{
		{"absent", nil, "00:00"},
		{"zero", ptr(0.0), "00:00"},
		{"sub-minute", ptr(15.0), "0:15"},
		{"truncates fraction", ptr(62.9), "1:02"},
		{"long video", ptr(645.0), "10:45"},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			raw := &extractor.RawMetadata{Duration: test.duration}
			info := tiktok.NewVideoInfo(raw, "https://www.tiktok.com/@somebody/video/1")
			assert.Equal(t, test.expected, info.Metadata.Duration)
		})
	}
}
