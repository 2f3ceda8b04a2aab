package fetcher

// Package fetcher implements the per-platform retrieval adapters on top of
// yt-dlp (via github.com/lrstanley/go-ytdlp). Each adapter downloads one URL
// into a destination directory and reports the exact path of the file it
// produced.
