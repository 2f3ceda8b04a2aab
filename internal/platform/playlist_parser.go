package platform

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/video-api/internal/model"
	"github.com/ytget/ytdlp/v2"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 60 * time.Second
)

// URL parameters
const (
	PlaylistURLParam = "list"
)

// Listing limits
const (
	// DefaultPlaylistLimit caps how many items are listed; 0 means no limit
	DefaultPlaylistLimit = 0
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	PlaylistSuffix       = " Playlist"
	MinPrefixLength      = 10
	MaxTitleLength       = 50
	TitleTruncateSuffix  = "..."
)

// Errors returned by the playlist parser
var (
	ErrNotYouTube      = errors.New("not a YouTube URL")
	ErrNoPlaylistParam = errors.New("URL does not contain a playlist parameter")
)

// PlaylistItem is a single entry returned by a PlaylistSource
type PlaylistItem struct {
	VideoID string
	Title   string
}

// PlaylistSource lists the items of a playlist by its ID
type PlaylistSource interface {
	Items(ctx context.Context, playlistID string, limit int) ([]PlaylistItem, error)
}

// ytdlpSource lists playlist items with the ytdlp library
type ytdlpSource struct{}

func (ytdlpSource) Items(ctx context.Context, playlistID string, limit int) ([]PlaylistItem, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]PlaylistItem, 0, len(items))
	for _, it := range items {
		out = append(out, PlaylistItem{VideoID: it.VideoID, Title: it.Title})
	}
	return out, nil
}

// PlaylistParserService lists YouTube playlists so that callers can submit
// the individual videos as download tasks
type PlaylistParserService struct {
	source  PlaylistSource
	timeout time.Duration
	limit   int
}

// NewPlaylistParserService creates a parser backed by the ytdlp library
func NewPlaylistParserService() *PlaylistParserService {
	return NewPlaylistParserServiceWithSource(ytdlpSource{})
}

// NewPlaylistParserServiceWithSource creates a parser backed by source
func NewPlaylistParserServiceWithSource(source PlaylistSource) *PlaylistParserService {
	return &PlaylistParserService{
		source:  source,
		timeout: DefaultPlaylistParseTimeout,
		limit:   DefaultPlaylistLimit,
	}
}

// SetTimeout sets the timeout for playlist parsing
func (p *PlaylistParserService) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// SetLimit sets the maximum number of listed items (0 for all)
func (p *PlaylistParserService) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	p.limit = limit
}

// ParsePlaylist resolves a YouTube playlist URL into its videos
func (p *PlaylistParserService) ParsePlaylist(ctx context.Context, rawURL string) (*model.Playlist, error) {
	playlistID, err := ExtractPlaylistID(rawURL)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	items, err := p.source.Items(ctx, playlistID, p.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := model.NewPlaylist(playlistID, rawURL)
	for _, it := range items {
		if it.VideoID == "" {
			continue
		}
		playlist.AddVideo(&model.PlaylistVideo{
			ID:    it.VideoID,
			Title: it.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	playlist.Title = extractPlaylistTitle(playlist.Videos)

	return playlist, nil
}

// ExtractPlaylistID extracts the playlist ID from a YouTube URL.
// Supported forms:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
//   - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(rawURL string) (string, error) {
	if Detect(rawURL) != model.PlatformYouTube {
		return "", fmt.Errorf("%w: %s", ErrNotYouTube, rawURL)
	}

	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid playlist URL: %w", err)
	}

	playlistID := strings.TrimSpace(u.Query().Get(PlaylistURLParam))
	if playlistID == "" {
		return "", ErrNoPlaylistParam
	}
	return playlistID, nil
}

// extractPlaylistTitle derives a title from the shared prefix of the first
// two video titles, falling back to the first title
func extractPlaylistTitle(videos []*model.PlaylistVideo) string {
	if len(videos) == 0 {
		return DefaultPlaylistTitle
	}
	if len(videos) > 1 {
		commonPrefix := strings.TrimSpace(findCommonPrefix(videos[0].Title, videos[1].Title))
		if len(commonPrefix) > MinPrefixLength {
			return commonPrefix + PlaylistSuffix
		}
	}

	firstTitle := videos[0].Title
	if firstTitle == "" {
		return DefaultPlaylistTitle
	}
	if len(firstTitle) > MaxTitleLength {
		firstTitle = firstTitle[:MaxTitleLength] + TitleTruncateSuffix
	}
	return firstTitle + PlaylistSuffix
}

// findCommonPrefix finds the common prefix between two strings
func findCommonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
