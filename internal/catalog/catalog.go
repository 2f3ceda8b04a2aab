// Package catalog lists and deletes the files in the shared download directory.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ytget/video-api/internal/platform"
)

var (
	// ErrInvalidName is returned for names that are not a bare filename
	ErrInvalidName = errors.New("invalid filename")

	// ErrNotFound is returned when the named file does not exist
	ErrNotFound = errors.New("video file not found")
)

// Entry describes one video file in the catalog
type Entry struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"` // modification time; creation time is not portable
}

// Catalog is a view of a download directory. It keeps no state of its own,
// so files added or removed by anything else show up on the next call.
type Catalog struct {
	dir string
}

// New returns a catalog over dir
func New(dir string) *Catalog {
	return &Catalog{dir: dir}
}

// Dir returns the catalog directory
func (c *Catalog) Dir() string {
	return c.dir
}

// List returns the video files in the directory, sorted by name
func (c *Catalog) List() ([]Entry, error) {
	files, err := platform.ListVideoFiles(c.dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{
			Filename:  f.Name,
			SizeBytes: f.Size,
			CreatedAt: f.ModTime,
		})
	}
	return entries, nil
}

// Delete removes the named file from the directory. Task records that point
// at the file are left alone.
func (c *Catalog) Delete(name string) error {
	path, err := c.resolve(name)
	if err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return ErrNotFound
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

// resolve maps a bare filename to a path inside the directory
func (c *Catalog) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ErrInvalidName
	}

	dir, err := filepath.Abs(c.dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if filepath.Dir(path) != dir {
		return "", ErrInvalidName
	}
	return path, nil
}
