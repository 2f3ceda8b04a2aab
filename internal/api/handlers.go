package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/ytget/video-api/internal/batch"
	"github.com/ytget/video-api/internal/catalog"
	"github.com/ytget/video-api/internal/download"
	"github.com/ytget/video-api/internal/model"
	"github.com/ytget/video-api/internal/platform"
)

// VideoCatalog lists and deletes downloaded files
type VideoCatalog interface {
	List() ([]catalog.Entry, error)
	Delete(name string) error
}

// PlaylistParser lists the videos of a playlist URL
type PlaylistParser interface {
	ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error)
}

// Handler serves the HTTP API
type Handler struct {
	downloads download.Downloader
	videos    VideoCatalog
	playlists PlaylistParser
	version   string
}

// NewHandler creates a handler. playlists may be nil, in which case the
// playlist endpoint answers 501.
func NewHandler(downloads download.Downloader, videos VideoCatalog, playlists PlaylistParser, version string) *Handler {
	return &Handler{
		downloads: downloads,
		videos:    videos,
		playlists: playlists,
		version:   version,
	}
}

type createTaskRequest struct {
	URL     string        `json:"url" binding:"required,http_url"`
	Quality model.Quality `json:"quality" binding:"omitempty,oneof=high medium low"`
}

type taskResponse struct {
	TaskID string           `json:"task_id"`
	Status model.TaskStatus `json:"status"`
	URL    string           `json:"url,omitempty"`
}

// Banner returns the service name and version
func (h *Handler) Banner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Video download API",
		"version": h.version,
	})
}

// CreateTask accepts one URL and starts downloading it in the background
func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	task, err := h.downloads.Submit(req.URL, req.Quality)
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusAccepted, taskResponse{TaskID: task.ID, Status: task.Status})
}

// CreateBatch starts one task per URL found in an uploaded spreadsheet
func (h *Handler) CreateBatch(c *gin.Context) {
	quality := model.Quality(c.PostForm("quality"))
	if quality != "" && !quality.IsValid() {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid quality %q", quality))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("missing spreadsheet: %w", err))
		return
	}
	file, err := header.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	urls, err := batch.ParseURLs(file, c.DefaultPostForm("column", batch.DefaultColumn))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	// same rule as the http_url binding on POST /download; nothing is
	// submitted unless every cell passes
	for i, url := range urls {
		if !isHTTPURL(url) {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid url %q (url %d of %d)", url, i+1, len(urls)))
			return
		}
	}

	tasks := make([]taskResponse, 0, len(urls))
	for _, url := range urls {
		task, err := h.downloads.Submit(url, quality)
		if err != nil {
			// tasks submitted so far keep running
			c.JSON(statusFor(err), gin.H{
				"error": err.Error(),
				"tasks": tasks,
				"count": len(tasks),
			})
			return
		}
		tasks = append(tasks, taskResponse{TaskID: task.ID, Status: task.Status, URL: url})
	}

	log.Printf("batch upload %s: %d tasks submitted", header.Filename, len(tasks))
	c.JSON(http.StatusAccepted, gin.H{"tasks": tasks, "count": len(tasks)})
}

// GetStatus returns a task snapshot
func (h *Handler) GetStatus(c *gin.Context) {
	task, err := h.downloads.GetTask(c.Param("task_id"))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ListTasks returns snapshots of every known task
func (h *Handler) ListTasks(c *gin.Context) {
	tasks := h.downloads.GetAllTasks()
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// GetVideo streams the file produced by a completed task
func (h *Handler) GetVideo(c *gin.Context) {
	task, err := h.downloads.GetTask(c.Param("task_id"))
	if err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}

	if task.Status != model.TaskStatusCompleted {
		abortWithError(c, http.StatusBadRequest,
			fmt.Errorf("video is not ready yet, current status: %s", task.Status))
		return
	}

	// the file may have been deleted through the catalog since completion
	info, err := os.Stat(task.DownloadPath)
	if err != nil || !info.Mode().IsRegular() {
		abortWithError(c, http.StatusNotFound, catalog.ErrNotFound)
		return
	}

	c.Header("Content-Type", platform.ContentType(task.DownloadPath))
	c.FileAttachment(task.DownloadPath, filepath.Base(task.DownloadPath))
}

// ListVideos lists the files in the download directory
func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.videos.List()
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos, "count": len(videos)})
}

// DeleteVideo removes a file from the download directory
func (h *Handler) DeleteVideo(c *gin.Context) {
	name := c.Param("filename")
	if err := h.videos.Delete(name); err != nil {
		abortWithError(c, statusFor(err), err)
		return
	}
	log.Printf("deleted video %s", name)
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s deleted", name)})
}

// Playlist lists the videos of a YouTube playlist without downloading them
func (h *Handler) Playlist(c *gin.Context) {
	if h.playlists == nil {
		abortWithError(c, http.StatusNotImplemented, errors.New("playlist inspection is not available"))
		return
	}

	url := c.Query("url")
	if url == "" {
		abortWithError(c, http.StatusBadRequest, errors.New("url query parameter is required"))
		return
	}

	playlist, err := h.playlists.ParsePlaylist(c.Request.Context(), url)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		abortWithError(c, status, err)
		return
	}
	c.JSON(http.StatusOK, playlist)
}

// isHTTPURL reports whether s is an absolute http or https URL with a host
func isHTTPURL(s string) bool {
	u, err := neturl.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, download.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, download.ErrStoreFull),
		errors.Is(err, download.ErrServiceClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, catalog.ErrInvalidName),
		errors.Is(err, batch.ErrColumnNotFound),
		errors.Is(err, batch.ErrNoURLs),
		errors.Is(err, batch.ErrTooManyURLs),
		errors.Is(err, batch.ErrInvalidWorkbook),
		errors.Is(err, platform.ErrNotYouTube),
		errors.Is(err, platform.ErrNoPlaylistParam):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
