// internal/repository/task_repository.go
package repository

import (
	"context"
	stdsql "database/sql"
	"errors"
	"fmt"
	"strings"

	"entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gurkanbulca/projecttracker/internal/database"
	"github.com/gurkanbulca/projecttracker/internal/models"
	"github.com/gurkanbulca/projecttracker/internal/validation"
)

var taskColumns = []string{
	"id", "project_id", "title", "description", "due_date", "priority",
	"is_completed", "created_at", "updated_at",
}

// taskOrder lists open tasks first, then by due date with undated tasks
// last, then by descending priority.
const taskOrder = "is_completed ASC, due_date IS NULL ASC, due_date ASC, priority DESC, created_at ASC, id ASC"

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string       `json:"title" validate:"required,max=255"`
	Description *string      `json:"description"`
	DueDate     *models.Date `json:"due_date" validate:"-"`
	Priority    *int         `json:"priority" validate:"omitnil,min=1,max=5"`
}

// TaskPatch is a partial update. A null description or due_date clears the
// column; a null priority is ignored.
type TaskPatch struct {
	Title       *string                      `json:"title" validate:"omitnil,min=1,max=255"`
	Description models.Optional[string]      `json:"description" validate:"-"`
	DueDate     models.Optional[models.Date] `json:"due_date" validate:"-"`
	Priority    *int                         `json:"priority" validate:"omitnil,min=1,max=5"`
	IsCompleted *bool                        `json:"is_completed"`
}

func (in *TaskInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
}

func (p *TaskPatch) normalize() {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
}

// validate applies the tag rules plus the due date rule, which only holds
// at creation time.
func (in TaskInput) validate(today models.Date) error {
	errs := validation.Errors{}
	if err := validation.Struct(in); err != nil {
		verrs, ok := validation.As(err)
		if !ok {
			return err
		}
		errs.Merge(verrs)
	}
	if in.DueDate != nil && in.DueDate.Before(today) {
		errs.Add("due_date", "The due_date field must be a date after or equal to today.")
	}
	return errs.Err()
}

// TaskRepository stores the tasks of a project. Every method first checks
// that the caller owns the parent project.
type TaskRepository struct {
	store
}

func NewTaskRepository(db *database.DB, clock Clock) *TaskRepository {
	return &TaskRepository{store: newStore(db, clock)}
}

// List returns the project's tasks in display order with stats.
func (r *TaskRepository) List(ctx context.Context, callerID, projectID uuid.UUID) (*models.TaskList, error) {
	var list *models.TaskList
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.findOwned(ctx, tx, callerID, projectID, false); err != nil {
			return err
		}
		tasks, err := r.listTasks(ctx, tx, projectID)
		if err != nil {
			return err
		}
		today := r.clock.Today()
		list = &models.TaskList{
			Tasks: tasks,
			Stats: models.ComputeStats(tasks, today),
			Today: today,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Create adds an open task to the caller's project. A missing project is
// reported before any validation failure.
func (r *TaskRepository) Create(ctx context.Context, callerID, projectID uuid.UUID, in TaskInput) (*models.Task, error) {
	in.normalize()

	var created *models.Task
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.findOwned(ctx, tx, callerID, projectID, true); err != nil {
			return err
		}
		if err := in.validate(r.clock.Today()); err != nil {
			return err
		}

		priority := models.PriorityDefault
		if in.Priority != nil {
			priority = *in.Priority
		}
		now := r.clock.Timestamp()
		task := &models.Task{
			ID:          uuid.New(),
			ProjectID:   projectID,
			Title:       in.Title,
			Description: in.Description,
			DueDate:     in.DueDate,
			Priority:    priority,
			IsCompleted: false,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		insert := r.sql.Insert(database.TasksTable).
			Columns(taskColumns...).
			Values(task.ID, task.ProjectID, task.Title, task.Description, task.DueDate,
				task.Priority, task.IsCompleted, task.CreatedAt, task.UpdatedAt)
		if _, err := exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Get returns one task of the caller's project.
func (r *TaskRepository) Get(ctx context.Context, callerID, projectID, taskID uuid.UUID) (*models.Task, error) {
	var task *models.Task
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.findOwned(ctx, tx, callerID, projectID, false); err != nil {
			return err
		}
		t, err := r.findTask(ctx, tx, projectID, taskID, false)
		if err != nil {
			return err
		}
		task = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies patch to a task. Unlike Create it accepts due dates in
// the past.
func (r *TaskRepository) Update(ctx context.Context, callerID, projectID, taskID uuid.UUID, patch TaskPatch) (*models.Task, error) {
	patch.normalize()

	return r.modify(ctx, callerID, projectID, taskID, func(task *models.Task) (bool, error) {
		if err := validation.Struct(patch); err != nil {
			return false, err
		}

		changed := false
		if patch.Title != nil {
			task.Title = *patch.Title
			changed = true
		}
		if patch.Description.Set {
			task.Description = patch.Description.Value
			changed = true
		}
		if patch.DueDate.Set {
			task.DueDate = patch.DueDate.Value
			changed = true
		}
		if patch.Priority != nil {
			task.Priority = *patch.Priority
			changed = true
		}
		if patch.IsCompleted != nil {
			task.IsCompleted = *patch.IsCompleted
			changed = true
		}
		return changed, nil
	})
}

// Delete removes one task of the caller's project.
func (r *TaskRepository) Delete(ctx context.Context, callerID, projectID, taskID uuid.UUID) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.findOwned(ctx, tx, callerID, projectID, true); err != nil {
			return err
		}
		del := r.sql.Delete(database.TasksTable).
			Where(sql.And(sql.EQ("id", taskID), sql.EQ("project_id", projectID)))
		n, err := exec(ctx, tx, del)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if n == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
}

// Complete marks a task completed. Completing a completed task is a no-op.
func (r *TaskRepository) Complete(ctx context.Context, callerID, projectID, taskID uuid.UUID) (*models.Task, error) {
	return r.setCompleted(ctx, callerID, projectID, taskID, true)
}

// Uncomplete reopens a task.
func (r *TaskRepository) Uncomplete(ctx context.Context, callerID, projectID, taskID uuid.UUID) (*models.Task, error) {
	return r.setCompleted(ctx, callerID, projectID, taskID, false)
}

func (r *TaskRepository) setCompleted(ctx context.Context, callerID, projectID, taskID uuid.UUID, completed bool) (*models.Task, error) {
	return r.modify(ctx, callerID, projectID, taskID, func(task *models.Task) (bool, error) {
		if task.IsCompleted == completed {
			return false, nil
		}
		task.IsCompleted = completed
		return true, nil
	})
}

// modify loads a task under lock, lets fn change it and persists the
// result when fn reports a change.
func (r *TaskRepository) modify(ctx context.Context, callerID, projectID, taskID uuid.UUID, fn func(*models.Task) (bool, error)) (*models.Task, error) {
	var updated *models.Task
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.findOwned(ctx, tx, callerID, projectID, true); err != nil {
			return err
		}
		task, err := r.findTask(ctx, tx, projectID, taskID, true)
		if err != nil {
			return err
		}

		changed, err := fn(task)
		if err != nil {
			return err
		}
		if changed {
			task.UpdatedAt = r.clock.Timestamp()
			update := r.sql.Update(database.TasksTable).
				Set("title", task.Title).
				Set("description", task.Description).
				Set("due_date", task.DueDate).
				Set("priority", task.Priority).
				Set("is_completed", task.IsCompleted).
				Set("updated_at", task.UpdatedAt).
				Where(sql.And(sql.EQ("id", task.ID), sql.EQ("project_id", projectID)))
			if _, err := exec(ctx, tx, update); err != nil {
				return fmt.Errorf("update task: %w", err)
			}
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *store) findTask(ctx context.Context, tx *sqlx.Tx, projectID, taskID uuid.UUID, lock bool) (*models.Task, error) {
	sel := s.sql.Select(taskColumns...).
		From(s.sql.Table(database.TasksTable)).
		Where(sql.And(sql.EQ("id", taskID), sql.EQ("project_id", projectID)))
	if lock && s.lockable() {
		sel.ForUpdate()
	}

	var task models.Task
	if err := get(ctx, tx, &task, sel); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("query task: %w", err)
	}
	return &task, nil
}

func (s *store) listTasks(ctx context.Context, tx *sqlx.Tx, projectID uuid.UUID) ([]models.Task, error) {
	sel := s.sql.Select(taskColumns...).
		From(s.sql.Table(database.TasksTable)).
		Where(sql.EQ("project_id", projectID)).
		OrderExpr(sql.ExprP(taskOrder))

	tasks := []models.Task{}
	if err := selectAll(ctx, tx, &tasks, sel); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}
