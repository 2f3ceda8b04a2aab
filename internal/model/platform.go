package model

// Platform identifies a supported video hosting platform
type Platform string

const (
	// PlatformUnknown is returned for URLs no adapter recognizes
	PlatformUnknown Platform = ""

	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
)

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// IsKnown returns true for any platform other than PlatformUnknown
func (p Platform) IsKnown() bool {
	return p != PlatformUnknown
}

// Platforms lists the supported platforms in a stable order
func Platforms() []Platform {
	return []Platform{PlatformYouTube, PlatformTwitter, PlatformInstagram}
}
