package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	IsArchived  bool      `db:"is_archived" json:"is_archived"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProjectSummary is a project row with its task counters, as listed.
type ProjectSummary struct {
	Project
	TaskCount          int `db:"task_count" json:"task_count"`
	CompletedTaskCount int `db:"completed_task_count" json:"completed_task_count"`
}

// ProjectDetail is a project with its ordered tasks and derived stats.
// Today is the date the stats were computed against; per-task overdue
// flags must use the same date.
type ProjectDetail struct {
	Project
	Tasks []Task    `json:"tasks"`
	Stats TaskStats `json:"-"`
	Today Date      `json:"-"`
}

// TaskList is the ordered task set of a project with derived stats.
type TaskList struct {
	Tasks []Task
	Stats TaskStats
	Today Date
}
