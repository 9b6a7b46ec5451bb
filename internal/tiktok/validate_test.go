package tiktok_test

import (
	"testing"

	"github.com/bayhackplis1/Tiktok-Downloader-V4/internal/tiktok"
	"github.com/stretchr/testify/assert"
)

func Test_ValidateURL_AcceptsTikTokURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary string
		url     string
	}{
		{"canonical video URL", "https://www.tiktok.com/@somebody/video/7293014211234567890"},
		{"bare domain", "https://tiktok.com/@somebody/video/1"},
		{"mobile host", "http://m.tiktok.com/v/1.html"},
		{"vm share link", "https://vm.tiktok.com/ZMhkqXEuF/"},
		{"vt share link", "https://vt.tiktok.com/ZSJ8r9dQk"},
		{"mixed-case host", "https://WWW.TikTok.COM/@somebody/video/1"},
		{"query parameters", "https://www.tiktok.com/@somebody/video/1?is_copy_url=1&lang=en"},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			assert.Empty(t, tiktok.ValidateURL(test.url))
		})
	}
}

func Test_ValidateURL_RejectsBadURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		summary      string
		url          string
		firstMessage string
	}{
		{"empty string", "", "URL is required"},
		{"whitespace only", "   ", "URL is required"},
		{"not a URL at all", "not a url", "URL must be a valid HTTP(S) URL"},
		{"missing scheme", "tiktok.com/@somebody/video/1", "URL must be a valid HTTP(S) URL"},
		{"scheme relative", "//tiktok.com/@somebody/video/1", "URL must be a valid HTTP(S) URL"},
		{"unsupported scheme", "ftp://tiktok.com/@somebody/video/1", "URL must be a valid HTTP(S) URL"},
		{"wrong platform", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "URL must point to tiktok.com"},
		{"lookalike suffix", "https://eviltiktok.com/@somebody/video/1", "URL must point to tiktok.com"},
		{"lookalike prefix", "https://tiktok.com.evil.example/@somebody/video/1", "URL must point to tiktok.com"},
	}

	for _, test := range tests {
		t.Run(test.summary, func(t *testing.T) {
			problems := tiktok.ValidateURL(test.url)
			assert.NotEmpty(t, problems)
			assert.Equal(t, test.firstMessage, problems[0])
		})
	}
}
