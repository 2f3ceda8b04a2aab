package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/video-api/internal/model"
	"github.com/ytget/video-api/internal/platform"
)

// Failure reasons recorded on tasks
var (
	ErrUnsupportedPlatform = errors.New("unsupported URL format")
	ErrArtifactNotFound    = errors.New("downloaded but file not found")
	ErrServiceClosed       = errors.New("download service is shutting down")
)

// Default values
const (
	DefaultTaskTimeout = 30 * time.Minute
	DefaultMaxParallel = 2
)

// Service runs download tasks. Each submitted task gets its own goroutine;
// at most maxParallel of them call a fetcher at the same time.
type Service struct {
	store       *Store
	fetchers    map[model.Platform]Fetcher
	fetchersMu  sync.RWMutex
	downloadDir string
	taskTimeout time.Duration
	slots       chan struct{}
	detect      func(string) model.Platform
	onUpdate    func(model.Task) // callback for task transitions

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new download service writing into downloadDir
func NewService(store *Store, downloadDir string, maxParallel int) *Service {
	if maxParallel < 1 {
		maxParallel = DefaultMaxParallel
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:       store,
		fetchers:    make(map[model.Platform]Fetcher),
		downloadDir: downloadDir,
		taskTimeout: DefaultTaskTimeout,
		slots:       make(chan struct{}, maxParallel),
		detect:      platform.Detect,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// RegisterFetcher sets the retrieval adapter used for p
func (s *Service) RegisterFetcher(p model.Platform, f Fetcher) {
	s.fetchersMu.Lock()
	defer s.fetchersMu.Unlock()
	s.fetchers[p] = f
}

// SetTaskTimeout sets the deadline applied to every fetch
func (s *Service) SetTaskTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultTaskTimeout
	}
	s.taskTimeout = d
}

// SetUpdateCallback sets the callback invoked after every task transition.
// Must be called before the first Submit.
func (s *Service) SetUpdateCallback(callback func(model.Task)) {
	s.onUpdate = callback
}

// DownloadDirectory returns the shared download directory
func (s *Service) DownloadDirectory() string {
	return s.downloadDir
}

// Submit creates a pending task for url and starts it in the background.
// It returns as soon as the task is recorded.
func (s *Service) Submit(url string, quality model.Quality) (model.Task, error) {
	if s.ctx.Err() != nil {
		return model.Task{}, ErrServiceClosed
	}
	if quality == "" {
		quality = model.DefaultQuality
	}

	task, err := s.store.Create(url, quality)
	if err != nil {
		return model.Task{}, err
	}
	log.Printf("task %s: submitted %s", task.ID, url)
	s.notifyUpdate(task)

	s.wg.Add(1)
	go s.run(task.ID, url)

	return task, nil
}

// GetTask returns a snapshot of a task by ID
func (s *Service) GetTask(id string) (model.Task, error) {
	return s.store.Get(id)
}

// GetAllTasks returns snapshots of all tasks
func (s *Service) GetAllTasks() []model.Task {
	return s.store.List()
}

// Close cancels running downloads and stops accepting new tasks. Tasks that
// are cancelled this way end up failed.
func (s *Service) Close() {
	s.cancel()
}

// Wait blocks until every started task reached a terminal status
func (s *Service) Wait() {
	s.wg.Wait()
}

// run drives one task from pending to a terminal status. Every error,
// including a panic in a fetcher, ends up recorded on the task.
func (s *Service) run(id, url string) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("task %s: panic: %v", id, r)
			s.fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	p := s.detect(url)
	if !p.IsKnown() {
		s.fail(id, ErrUnsupportedPlatform.Error())
		return
	}

	fetcher, ok := s.fetcher(p)
	if !ok {
		s.fail(id, fmt.Sprintf("no downloader configured for %s", p))
		return
	}

	// wait for a free slot; the task stays pending meanwhile
	select {
	case s.slots <- struct{}{}:
	case <-s.ctx.Done():
		s.fail(id, "download cancelled")
		return
	}
	defer func() { <-s.slots }()

	if err := s.update(id, func(t *model.Task) {
		t.Platform = p
		t.Status = model.TaskStatusDownloading
	}); err != nil {
		return
	}
	log.Printf("task %s: downloading from %s", id, p)

	ctx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	reported, err := fetcher.Fetch(ctx, url, s.downloadDir)
	if err != nil {
		s.fail(id, s.describeFetchError(ctx, err))
		return
	}

	path, err := s.resolveArtifact(id, reported)
	if err != nil {
		s.fail(id, err.Error())
		return
	}

	if err := s.update(id, func(t *model.Task) {
		t.Complete(path)
	}); err == nil {
		log.Printf("task %s: completed: %s", id, path)
	}
}

func (s *Service) fetcher(p model.Platform) (Fetcher, bool) {
	s.fetchersMu.RLock()
	defer s.fetchersMu.RUnlock()
	f, ok := s.fetchers[p]
	return f, ok
}

// describeFetchError turns a fetch error into the reason recorded on the task
func (s *Service) describeFetchError(ctx context.Context, err error) string {
	switch {
	case s.ctx.Err() != nil:
		return "download cancelled"
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Sprintf("download timed out after %s", s.taskTimeout)
	default:
		return err.Error()
	}
}

// resolveArtifact returns the absolute path of the file a fetch produced.
// A reported path is used when it exists; otherwise the newest video file in
// the download directory is taken, which may belong to another task when
// downloads run concurrently.
func (s *Service) resolveArtifact(id, reported string) (string, error) {
	if reported != "" {
		if !filepath.IsAbs(reported) {
			reported = filepath.Join(s.downloadDir, reported)
		}
		if info, err := os.Stat(reported); err == nil && info.Mode().IsRegular() {
			return filepath.Abs(reported)
		}
		log.Printf("task %s: reported file %s is missing, scanning %s", id, reported, s.downloadDir)
	}

	latest, err := platform.LatestVideoFile(s.downloadDir)
	if err != nil {
		if !errors.Is(err, platform.ErrNoVideoFile) {
			log.Printf("task %s: scan failed: %v", id, err)
		}
		return "", ErrArtifactNotFound
	}
	return filepath.Abs(latest.Path)
}

func (s *Service) fail(id, reason string) {
	if err := s.update(id, func(t *model.Task) {
		t.Fail(reason)
	}); err == nil {
		log.Printf("task %s: failed: %s", id, reason)
	}
}

// update applies fn through the store and notifies the callback
func (s *Service) update(id string, fn func(t *model.Task)) error {
	task, err := s.store.Update(id, fn)
	if err != nil {
		log.Printf("task %s: update rejected: %v", id, err)
		return err
	}
	s.notifyUpdate(task)
	return nil
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task model.Task) {
	if s.onUpdate != nil {
		s.onUpdate(task)
	}
}
