package download

// Package download implements the asynchronous task lifecycle: an in-memory
// task store safe for concurrent use, and a service that runs each task off
// the request path through the platform's retrieval adapter (yt-dlp via
// internal/fetcher), bounded by a parallelism limit and a per-task deadline.
