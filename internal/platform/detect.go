package platform

import (
	"net/url"
	"strings"

	"github.com/ytget/video-api/internal/model"
)

// Host patterns per platform. A host matches when it contains a pattern, so
// mirrors such as vxtwitter.com or fixupx.com count as twitter. The match is
// loose: dropbox.com contains x.com and is tagged twitter as well.
var (
	YouTubeHosts   = []string{"youtube.com", "youtu.be"}
	TwitterHosts   = []string{"twitter.com", "x.com"}
	InstagramHosts = []string{"instagram.com"}
)

// Detect classifies a URL into a platform tag. It never fails: anything it
// does not recognize yields model.PlatformUnknown.
func Detect(rawURL string) model.Platform {
	host := hostOf(rawURL)
	if host == "" {
		// no host to parse; look at the whole string
		host = strings.ToLower(strings.TrimSpace(rawURL))
	}
	if host == "" {
		return model.PlatformUnknown
	}

	switch {
	case containsAny(host, YouTubeHosts):
		return model.PlatformYouTube
	case containsAny(host, TwitterHosts):
		return model.PlatformTwitter
	case containsAny(host, InstagramHosts):
		return model.PlatformInstagram
	default:
		return model.PlatformUnknown
	}
}

// hostOf returns the lower-cased host portion of rawURL. Scheme-less input
// such as "youtu.be/abc" is parsed as if it had an https scheme.
func hostOf(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func containsAny(host string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(host, p) {
			return true
		}
	}
	return false
}
