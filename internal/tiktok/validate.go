package tiktok

import (
	"net/url"
	"strings"
)

// ValidateURL checks that raw is a syntactically valid absolute HTTP(S)
// URL belonging to the TikTok platform. The returned slice is empty for
// acceptable URLs; otherwise it contains every failed constraint, most
// fundamental first, worded for direct inclusion in a client error.
//
// This is the only defensive boundary between a caller-controlled string
// and an external process invocation, so the host check is deliberately
// an allowlist: tiktok.com itself or any subdomain of it (www, m, and
// the vm/vt share-link hosts included).
func ValidateURL(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"URL is required"}
	}

	problems := make([]string, 0, 2)

	parsed, err := url.Parse(raw)
	wellFormed := err == nil && parsed.Host != "" && (parsed.Scheme == "http" || parsed.Scheme == "https")
	if !wellFormed {
		problems = append(problems, "URL must be a valid HTTP(S) URL")
	}

	if err != nil || parsed.Host == "" || !isTikTokHost(parsed.Hostname()) {
		problems = append(problems, "URL must point to tiktok.com")
	}

	return problems
}

func isTikTokHost(host string) bool {
	host = strings.ToLower(host)
	return host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com")
}
