package model

import (
	"errors"
	"fmt"
	"time"
)

// Quality is the advisory quality hint accepted with a download request.
// It is recorded on the task but no retrieval path consumes it.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// DefaultQuality is used when a request carries no quality hint
const DefaultQuality = QualityHigh

// IsValid reports whether q is a known quality hint
func (q Quality) IsValid() bool {
	return q == QualityHigh || q == QualityMedium || q == QualityLow
}

// Task represents a single download request and its lifecycle state
type Task struct {
	ID           string     `json:"task_id"`
	URL          string     `json:"url"`
	Quality      Quality    `json:"quality,omitempty"`
	Status       TaskStatus `json:"status"`
	Platform     Platform   `json:"platform,omitempty"`
	DownloadPath string     `json:"download_path,omitempty"` // absolute path, set only when completed
	Percentage   *float64   `json:"percentage,omitempty"`    // never populated
	Error        string     `json:"error,omitempty"`         // set only when failed
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	FinishedAt   time.Time  `json:"finished_at,omitzero"`
}

// NewTask creates a pending task
func NewTask(id, url string, quality Quality) *Task {
	now := time.Now()
	return &Task{
		ID:        id,
		URL:       url,
		Quality:   quality,
		Status:    TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ErrInvalidTransition is returned when a mutation would break the task lifecycle
var ErrInvalidTransition = errors.New("invalid task transition")

// ValidateTransition checks that next is a legal successor of prev.
// Identity and creation time are immutable, the platform is set at most once,
// and the path and error fields must agree with the status.
func ValidateTransition(prev, next *Task) error {
	if next.ID != prev.ID || !next.CreatedAt.Equal(prev.CreatedAt) {
		return fmt.Errorf("%w: identity changed", ErrInvalidTransition)
	}
	if !prev.Status.CanTransitionTo(next.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev.Status, next.Status)
	}
	if prev.Platform.IsKnown() && next.Platform != prev.Platform {
		return fmt.Errorf("%w: platform already set to %s", ErrInvalidTransition, prev.Platform)
	}
	if (next.Status == TaskStatusCompleted) != (next.DownloadPath != "") {
		return fmt.Errorf("%w: download path must be set exactly when completed", ErrInvalidTransition)
	}
	if (next.Status == TaskStatusFailed) != (next.Error != "") {
		return fmt.Errorf("%w: error must be set exactly when failed", ErrInvalidTransition)
	}
	return nil
}

// Fail marks the task failed with the given reason
func (t *Task) Fail(reason string) {
	if reason == "" {
		reason = "unknown error"
	}
	t.Status = TaskStatusFailed
	t.Error = reason
	t.DownloadPath = ""
}

// Complete marks the task completed with the produced artifact path
func (t *Task) Complete(path string) {
	t.Status = TaskStatusCompleted
	t.DownloadPath = path
	t.Error = ""
}
