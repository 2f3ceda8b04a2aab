package download

import (
	"context"

	"github.com/ytget/video-api/internal/model"
)

// Fetcher is a retrieval adapter for one platform. Fetch downloads url into
// destDir and returns the path of the produced file, or "" if the adapter
// cannot tell.
type Fetcher interface {
	Fetch(ctx context.Context, url, destDir string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, url, destDir string) (string, error)

// Fetch calls f(ctx, url, destDir)
func (f FetcherFunc) Fetch(ctx context.Context, url, destDir string) (string, error) {
	return f(ctx, url, destDir)
}

// Downloader defines the interface for the download service.
type Downloader interface {
	SetUpdateCallback(func(model.Task))
	Submit(url string, quality model.Quality) (model.Task, error)
	GetTask(id string) (model.Task, error)
	GetAllTasks() []model.Task
	DownloadDirectory() string
}
