package models

import (
	"time"

	"github.com/google/uuid"
)

// Priority bounds
const (
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = PriorityMin
)

type Task struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProjectID   uuid.UUID `db:"project_id" json:"project_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	DueDate     *Date     `db:"due_date" json:"due_date"`
	Priority    int       `db:"priority" json:"priority"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsOverdue reports whether the task is still open and its due date lies
// strictly before today.
func (t *Task) IsOverdue(today Date) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(today)
}

// TaskStats is always derived from the current task set.
type TaskStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}

func ComputeStats(tasks []Task, today Date) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for i := range tasks {
		if tasks[i].IsCompleted {
			stats.Completed++
			continue
		}
		stats.Pending++
		if tasks[i].IsOverdue(today) {
			stats.Overdue++
		}
	}
	return stats
}
