package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// VideoExtensions is the allow-list of artifact extensions
var (
	VideoExtensions = []string{".mp4", ".webm", ".mkv"}
)

// Content types served for each video extension
var (
	VideoContentTypes = map[string]string{
		".mp4":  "video/mp4",
		".webm": "video/webm",
		".mkv":  "video/x-matroska",
	}
)

// DefaultContentType is used for extensions missing from VideoContentTypes
const DefaultContentType = "video/mp4"

// File markers yt-dlp leaves on files that are still being written or merged
var (
	SkippedExtensions = []string{".part", ".ytdl"}
	SkippedInfixes    = []string{".temp.", ".part-"}
)

// formatFragment matches per-format intermediate files such as "title.f137.mp4"
var formatFragment = regexp.MustCompile(`\.f\d+\.[A-Za-z0-9]+$`)

// ErrNoVideoFile is returned when a directory holds no recognized video file
var ErrNoVideoFile = errors.New("no video file found")

// VideoFile describes a video file found in a directory
type VideoFile struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// IsVideoFile reports whether name has an allowed video extension and does not
// look like a partial or intermediate download
func IsVideoFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	for _, infix := range SkippedInfixes {
		if strings.Contains(lower, infix) {
			return false
		}
	}
	if formatFragment.MatchString(lower) {
		return false
	}

	ext := filepath.Ext(lower)
	for _, allowed := range VideoExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type to serve a video file with
func ContentType(name string) string {
	if ct, ok := VideoContentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}

// ListVideoFiles returns the regular video files directly inside dir, sorted by name
func ListVideoFiles(dir string) ([]VideoFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := make([]VideoFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsVideoFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, VideoFile{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// LatestVideoFile returns the most recently modified video file in dir.
//
// This is only a guess at which file a download produced: when several
// downloads write into the same directory concurrently it can return another
// download's file. Callers should prefer a path reported by the downloader.
func LatestVideoFile(dir string) (VideoFile, error) {
	files, err := ListVideoFiles(dir)
	if err != nil {
		return VideoFile{}, err
	}
	if len(files) == 0 {
		return VideoFile{}, ErrNoVideoFile
	}

	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, nil
}
