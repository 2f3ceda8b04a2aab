package platform

import (
	"testing"

	"github.com/ytget/video-api/internal/model"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected model.Platform
	}{
		{"youtube watch", "https://youtube.com/watch?v=dQw4w9WgXcQ", model.PlatformYouTube},
		{"youtube www", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", model.PlatformYouTube},
		{"youtube mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", model.PlatformYouTube},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", model.PlatformYouTube},
		{"x", "https://x.com/user/status/123", model.PlatformTwitter},
		{"twitter", "https://twitter.com/user/status/123", model.PlatformTwitter},
		{"instagram post", "https://instagram.com/p/Cabc123/", model.PlatformInstagram},
		{"instagram reel", "https://www.instagram.com/reel/Cabc123/", model.PlatformInstagram},
		{"no scheme", "youtu.be/dQw4w9WgXcQ", model.PlatformYouTube},
		{"upper case host", "https://WWW.YOUTUBE.COM/watch?v=1", model.PlatformYouTube},
		{"vimeo", "https://vimeo.com/123", model.PlatformUnknown},
		{"example", "https://example.com/video.mp4", model.PlatformUnknown},
		{"platform in path only", "https://example.com/youtube.com/watch", model.PlatformUnknown},
		{"twitter mirror", "https://vxtwitter.com/u/status/1", model.PlatformTwitter},
		{"x mirror", "https://fixupx.com/u/status/1", model.PlatformTwitter},
		{"youtube host prefix", "https://www.youtube.com.example.org/watch?v=1", model.PlatformYouTube},
		{"substring of another host", "https://dropbox.com/s/video.mp4", model.PlatformTwitter},
		{"unparsable falls back to raw string", "https://www.youtube.com/%zz", model.PlatformYouTube},
		{"empty", "", model.PlatformUnknown},
		{"garbage", "::not a url::", model.PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.url); got != tt.expected {
				t.Errorf("Detect(%q) = %q, expected %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestDetect_Deterministic(t *testing.T) {
	url := "https://x.com/user/status/1"
	first := Detect(url)
	for i := 0; i < 10; i++ {
		if got := Detect(url); got != first {
			t.Fatalf("Detect returned %q then %q", first, got)
		}
	}
}
