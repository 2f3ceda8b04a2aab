package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ytget/video-api/internal/config"
	"github.com/ytget/video-api/internal/download"
	"github.com/ytget/video-api/internal/model"
)

// syncBuffer is a bytes.Buffer safe for use from the test and run
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testSettings(t *testing.T) *config.Settings {
	s := config.NewSettings()
	s.DownloadDir = t.TempDir()
	return s
}

func TestRunDownloadsUntilQuit(t *testing.T) {
	settings := testSettings(t)
	var fetched []string
	fetchers := map[model.Platform]download.Fetcher{
		model.PlatformYouTube: download.FetcherFunc(func(ctx context.Context, url, dir string) (string, error) {
			fetched = append(fetched, url)
			return filepath.Join(dir, "clip.mp4"), nil
		}),
		model.PlatformTwitter: download.FetcherFunc(func(ctx context.Context, url, dir string) (string, error) {
			return "", errors.New("no video in tweet")
		}),
	}
	in := strings.NewReader("https://youtu.be/abc\n\nhttps://vimeo.com/1\nhttps://x.com/u/status/1\nq\nhttps://youtu.be/never\n")
	var out syncBuffer

	if err := run(context.Background(), in, &out, settings, fetchers); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(fetched) != 1 || fetched[0] != "https://youtu.be/abc" {
		t.Errorf("Expected one youtube fetch, got %v", fetched)
	}
	output := out.String()
	for _, want := range []string{
		"Saved to " + filepath.Join(settings.DownloadDir, "clip.mp4"),
		"Unsupported platform",
		"Download failed: no video in tweet",
		"Bye",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}
}

func TestRunStopsAtEOF(t *testing.T) {
	var out syncBuffer
	if err := run(context.Background(), strings.NewReader(""), &out, testSettings(t), nil); err != nil {
		t.Errorf("Expected nil error at EOF, got %v", err)
	}
}

func TestRunReturnsWhenCancelledAtPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out syncBuffer
	go func() {
		done <- run(ctx, pr, &out, testSettings(t), nil)
	}()

	// a blank line must not hide the cancellation
	if _, err := pw.Write([]byte("\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error after cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run still waiting for input after cancel")
	}
}

func TestRunCancelStopsDownload(t *testing.T) {
	started := make(chan struct{})
	fetchers := map[model.Platform]download.Fetcher{
		model.PlatformYouTube: download.FetcherFunc(func(ctx context.Context, url, dir string) (string, error) {
			close(started)
			<-ctx.Done()
			return "", ctx.Err()
		}),
	}
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var out syncBuffer
	go func() {
		done <- run(ctx, pr, &out, testSettings(t), fetchers)
	}()

	if _, err := pw.Write([]byte("https://youtu.be/abc\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	<-started
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after cancel during download")
	}
	if !strings.Contains(out.String(), "Download failed") {
		t.Errorf("Expected the cancelled download to be reported, got:\n%s", out.String())
	}
}
