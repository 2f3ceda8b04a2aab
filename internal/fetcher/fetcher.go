package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"

	"github.com/lrstanley/go-ytdlp"
	"github.com/ytget/video-api/internal/model"
)

// yt-dlp settings
const (
	// FormatBest selects the best single-file format
	FormatBest = "best"

	// FormatMP4Fallback merges the best mp4 video with m4a audio, or any mp4
	FormatMP4Fallback = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4"

	// TitleOutputTemplate names files after the video title
	TitleOutputTemplate = "%(title)s.%(ext)s"

	// ShortcodeOutputTemplate is used for Instagram, named after the post shortcode
	ShortcodeOutputTemplate = "%s.%%(ext)s"
)

// ErrInvalidShortcode is returned for Instagram URLs that are not a post or reel
var ErrInvalidShortcode = errors.New("not a valid Instagram video URL")

var instagramShortcode = regexp.MustCompile(`instagram\.com/(?:p|reel)/([^/?#]+)`)

// Runner executes a configured yt-dlp command. It exists so tests can
// replace the yt-dlp binary.
type Runner interface {
	Run(ctx context.Context, cmd *ytdlp.Command, url string) (*ytdlp.Result, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, cmd *ytdlp.Command, url string) (*ytdlp.Result, error) {
	return cmd.Run(ctx, url)
}

// Options configures a YTDLP adapter
type Options struct {
	Platform model.Platform
	// Formats are tried in order until one succeeds
	Formats    []string
	NoPlaylist bool
	// Output builds the output template for a URL; nil uses TitleOutputTemplate
	Output func(url string) (string, error)
}

// YTDLP is a retrieval adapter backed by yt-dlp
type YTDLP struct {
	opts   Options
	runner Runner
}

// NewYTDLP creates an adapter with the given options
func NewYTDLP(opts Options) *YTDLP {
	if len(opts.Formats) == 0 {
		opts.Formats = []string{FormatBest}
	}
	return &YTDLP{opts: opts, runner: execRunner{}}
}

// NewYouTube creates the YouTube adapter: best format, single video only,
// with an mp4 merge fallback
func NewYouTube() *YTDLP {
	return NewYTDLP(Options{
		Platform:   model.PlatformYouTube,
		Formats:    []string{FormatBest, FormatMP4Fallback},
		NoPlaylist: true,
	})
}

// NewTwitter creates the Twitter/X adapter
func NewTwitter() *YTDLP {
	return NewYTDLP(Options{
		Platform: model.PlatformTwitter,
		Formats:  []string{FormatBest},
	})
}

// NewInstagram creates the Instagram adapter. Only post and reel URLs are
// accepted and files are named after the shortcode.
func NewInstagram() *YTDLP {
	return NewYTDLP(Options{
		Platform: model.PlatformInstagram,
		Formats:  []string{FormatBest},
		Output: func(url string) (string, error) {
			code, err := InstagramShortcode(url)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf(ShortcodeOutputTemplate, code), nil
		},
	})
}

// Registry returns the adapters for every supported platform
func Registry() map[model.Platform]*YTDLP {
	return map[model.Platform]*YTDLP{
		model.PlatformYouTube:   NewYouTube(),
		model.PlatformTwitter:   NewTwitter(),
		model.PlatformInstagram: NewInstagram(),
	}
}

// WithRunner replaces the command runner
func (y *YTDLP) WithRunner(r Runner) *YTDLP {
	y.runner = r
	return y
}

// Platform returns the platform this adapter handles
func (y *YTDLP) Platform() model.Platform {
	return y.opts.Platform
}

// Fetch downloads url into destDir and returns the absolute path of the
// produced file. An empty path with a nil error means yt-dlp succeeded but
// did not report a filename.
func (y *YTDLP) Fetch(ctx context.Context, url, destDir string) (string, error) {
	template := TitleOutputTemplate
	if y.opts.Output != nil {
		t, err := y.opts.Output(url)
		if err != nil {
			return "", err
		}
		template = t
	}
	output := filepath.Join(destDir, template)

	var lastErr error
	for i, format := range y.opts.Formats {
		if i > 0 {
			log.Printf("%s download failed, trying format %q: %v", y.opts.Platform, format, lastErr)
		}

		cmd := ytdlp.New().
			Format(format).
			Output(output).
			RestrictFilenames().
			PrintJSON()
		if y.opts.NoPlaylist {
			cmd = cmd.NoPlaylist()
		}

		result, err := y.runner.Run(ctx, cmd, url)
		if err == nil {
			return producedPath(result, destDir), nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("%s download failed: %w", y.opts.Platform, lastErr)
}

// producedPath reads the output filename back from the extracted info.
// Relative names are resolved against destDir.
func producedPath(result *ytdlp.Result, destDir string) string {
	if result == nil {
		return ""
	}
	info, err := result.GetExtractedInfo()
	if err != nil || len(info) == 0 {
		return ""
	}
	return resolveInfoPath(info, destDir)
}

func resolveInfoPath(info []*ytdlp.ExtractedInfo, destDir string) string {
	for _, i := range info {
		if i == nil {
			continue
		}
		var path string
		switch {
		case i.Filename != nil && *i.Filename != "":
			path = *i.Filename
		case i.AltFilename != nil && *i.AltFilename != "":
			path = *i.AltFilename
		default:
			continue
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(destDir, path)
		}
		return path
	}
	return ""
}

// InstagramShortcode extracts the post shortcode from an Instagram URL
func InstagramShortcode(url string) (string, error) {
	m := instagramShortcode.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidShortcode, url)
	}
	return m[1], nil
}

// Install makes sure a yt-dlp binary is available, downloading it if needed
func Install(ctx context.Context) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	log.Printf("using yt-dlp %s at %s", resolved.Version, resolved.Executable)
	return nil
}
