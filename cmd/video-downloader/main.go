// Command video-downloader downloads videos interactively, one URL at a time,
// without running the HTTP service.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ytget/video-api/internal/config"
	"github.com/ytget/video-api/internal/download"
	"github.com/ytget/video-api/internal/fetcher"
	"github.com/ytget/video-api/internal/model"
	"github.com/ytget/video-api/internal/platform"
)

func main() {
	settings, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}
	if err := platform.CreateDirectoryIfNotExists(settings.DownloadDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure downloads dir: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if settings.InstallYTDLP {
		if err := fetcher.Install(ctx); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fetchers := make(map[model.Platform]download.Fetcher)
	for p, f := range fetcher.Registry() {
		fetchers[p] = f
	}

	fmt.Printf("Videos will be saved to: %s\n", settings.DownloadDir)
	if err := run(ctx, os.Stdin, os.Stdout, settings, fetchers); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readLines sends every line of in to the returned channel and closes it at
// EOF. The read error, if any, is delivered on errc before the close.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

// run prompts for URLs until "q", EOF or ctx is cancelled. Cancelling ctx
// also stops a download in progress.
func run(ctx context.Context, in io.Reader, out io.Writer, settings *config.Settings, fetchers map[model.Platform]download.Fetcher) error {
	lines, errc := readLines(ctx, in)
	for {
		fmt.Fprintln(out, "\n=== Video Downloader ===")
		fmt.Fprintln(out, "Type 'q' to quit")
		fmt.Fprint(out, "\nVideo URL: ")

		var url string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nBye")
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			url = strings.TrimSpace(line)
		}

		switch {
		case strings.EqualFold(url, "q"):
			fmt.Fprintln(out, "Bye")
			return nil
		case url == "":
			continue
		}

		p := platform.Detect(url)
		f, ok := fetchers[p]
		if !ok {
			fmt.Fprintln(out, "Unsupported platform or invalid URL. Only YouTube, Twitter and Instagram are supported.")
			continue
		}

		fmt.Fprintf(out, "Downloading %s video: %s\n", p, url)
		fetchCtx, cancel := context.WithTimeout(ctx, settings.TaskTimeout)
		path, err := f.Fetch(fetchCtx, url, settings.DownloadDir)
		cancel()
		switch {
		case err != nil:
			fmt.Fprintf(out, "Download failed: %v\n", err)
		case path == "":
			fmt.Fprintln(out, "Download finished")
		default:
			fmt.Fprintf(out, "Saved to %s\n", path)
		}
	}
}
