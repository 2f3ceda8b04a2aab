package model

// TaskStatus represents the status of a download task
type TaskStatus string

const (
	// TaskStatusPending means the task is accepted but retrieval has not started
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusDownloading means the retrieval adapter is running
	TaskStatusDownloading TaskStatus = "downloading"

	// TaskStatusCompleted means the artifact was produced and recorded
	TaskStatusCompleted TaskStatus = "completed"

	// TaskStatusFailed means the task stopped with an error
	TaskStatusFailed TaskStatus = "failed"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsValid reports whether ts is one of the known statuses
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusDownloading, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// IsActive returns true if the task has not reached a terminal status
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusPending || ts == TaskStatusDownloading
}

// IsFinished returns true if the task is in a terminal status (completed or failed)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusFailed
}

// CanTransitionTo reports whether moving from ts to next is legal.
// Staying in the same non-terminal status is allowed so that fields
// other than the status can be updated.
func (ts TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch ts {
	case TaskStatusPending:
		return next == TaskStatusPending || next == TaskStatusDownloading || next == TaskStatusFailed
	case TaskStatusDownloading:
		return next == TaskStatusDownloading || next == TaskStatusCompleted || next == TaskStatusFailed
	default:
		return false
	}
}
