package download

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/video-api/internal/model"
)

var (
	// ErrNotFound is returned for unknown (or evicted) task IDs
	ErrNotFound = errors.New("task not found")

	// ErrStoreFull is returned when the store is at capacity and every task is still active
	ErrStoreFull = errors.New("too many active tasks")

	// ErrInvalidTransition is returned when an update would break the task lifecycle
	ErrInvalidTransition = model.ErrInvalidTransition
)

// Store is the in-memory registry of download tasks. Readers always get
// copies; writers go through Update, which swaps in a validated copy under
// the write lock.
type Store struct {
	tasks      map[string]*model.Task
	tasksMutex sync.RWMutex
	ttl        time.Duration // 0 keeps finished tasks forever
	capacity   int           // 0 means unbounded
	now        func() time.Time
	newID      func() (string, error)
}

// NewStore creates a store that evicts finished tasks after ttl and keeps at
// most capacity tasks
func NewStore(ttl time.Duration, capacity int) *Store {
	return &Store{
		tasks:    make(map[string]*model.Task),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
		newID:    generateTaskID,
	}
}

// Create inserts a new pending task and returns a snapshot of it
func (s *Store) Create(url string, quality model.Quality) (model.Task, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	if s.capacity > 0 && len(s.tasks) >= s.capacity {
		if !s.evictOldestFinishedLocked() {
			return model.Task{}, ErrStoreFull
		}
	}

	id, err := s.uniqueIDLocked()
	if err != nil {
		return model.Task{}, err
	}

	task := model.NewTask(id, url, quality)
	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now
	s.tasks[id] = task
	return *task, nil
}

// Get returns a snapshot of the task
func (s *Store) Get(id string) (model.Task, error) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return *task, nil
}

// Update applies fn to a copy of the task and stores the copy if the result
// is a legal transition. UpdatedAt and FinishedAt are maintained here.
func (s *Store) Update(id string, fn func(t *model.Task)) (model.Task, error) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}

	next := *current
	fn(&next)
	if err := model.ValidateTransition(current, &next); err != nil {
		return *current, err
	}

	now := s.now()
	next.UpdatedAt = now
	if next.Status.IsFinished() {
		next.FinishedAt = now
	}
	s.tasks[id] = &next
	return next, nil
}

// List returns snapshots of all tasks, oldest first
func (s *Store) List() []model.Task {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	tasks := make([]model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		tasks = append(tasks, *task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks
}

// Len returns the number of stored tasks
func (s *Store) Len() int {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return len(s.tasks)
}

// ActiveCount returns the number of tasks that have not finished yet
func (s *Store) ActiveCount() int {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()

	n := 0
	for _, task := range s.tasks {
		if task.Status.IsActive() {
			n++
		}
	}
	return n
}

// Prune removes finished tasks whose FinishedAt is older than the TTL and
// returns how many were removed
func (s *Store) Prune() int {
	if s.ttl <= 0 {
		return 0
	}

	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, task := range s.tasks {
		if task.Status.IsFinished() && task.FinishedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes expired tasks every interval until ctx is cancelled
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Prune(); n > 0 {
				log.Printf("evicted %d finished tasks", n)
			}
		}
	}
}

// evictOldestFinishedLocked removes the finished task that finished first.
// Active tasks are never evicted.
func (s *Store) evictOldestFinishedLocked() bool {
	var oldestID string
	var oldest time.Time
	for id, task := range s.tasks {
		if !task.Status.IsFinished() {
			continue
		}
		if oldestID == "" || task.FinishedAt.Before(oldest) {
			oldestID = id
			oldest = task.FinishedAt
		}
	}
	if oldestID == "" {
		return false
	}
	delete(s.tasks, oldestID)
	return true
}

func (s *Store) uniqueIDLocked() (string, error) {
	const maxAttempts = 3
	for i := 0; i < maxAttempts; i++ {
		id, err := s.newID()
		if err != nil {
			return "", err
		}
		if _, exists := s.tasks[id]; !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique task ID after %d attempts", maxAttempts)
}

// generateTaskID generates a unique, time-ordered task ID
func generateTaskID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate task ID: %w", err)
	}
	return id.String(), nil
}
