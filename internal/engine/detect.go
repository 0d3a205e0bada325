package engine

import "strings"

// platformHosts maps hostname substrings to platform tags, in match order.
// First match wins.
var platformHosts = []struct {
	substr   string
	platform Platform
}{
	{"youtube.com", PlatformYouTube},
	{"youtu.be", PlatformYouTube},
	{"tiktok.com", PlatformTikTok},
	{"instagram.com", PlatformInstagram},
	{"twitter.com", PlatformTwitter},
	{"x.com", PlatformTwitter},
}

// DetectPlatform classifies a video URL by hostname substring.
// Pure string matching, no IO. Unrecognized hosts return PlatformNone.
func DetectPlatform(rawURL string) Platform {
	lower := strings.ToLower(rawURL)
	for _, h := range platformHosts {
		if strings.Contains(lower, h.substr) {
			return h.platform
		}
	}
	return PlatformNone
}
