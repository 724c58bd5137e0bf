// internal/handler/task_handler.go
package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gurkanbulca/projecttracker/internal/models"
	"github.com/gurkanbulca/projecttracker/internal/repository"
	"github.com/gurkanbulca/projecttracker/internal/validation"
)

// TaskStore is the caller-scoped task storage the handler needs.
type TaskStore interface {
	List(ctx context.Context, callerID, projectID uuid.UUID) (*models.TaskList, error)
	Create(ctx context.Context, callerID, projectID uuid.UUID, in repository.TaskInput) (*models.Task, error)
	Get(ctx context.Context, callerID, projectID, taskID uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, callerID, projectID, taskID uuid.UUID, patch repository.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, callerID, projectID, taskID uuid.UUID) error
	Complete(ctx context.Context, callerID, projectID, taskID uuid.UUID) (*models.Task, error)
	Uncomplete(ctx context.Context, callerID, projectID, taskID uuid.UUID) (*models.Task, error)
	Today() models.Date
}

type TaskHandler struct {
	tasks TaskStore
	log   zerolog.Logger
}

func NewTaskHandler(tasks TaskStore, log zerolog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

type taskResponse struct {
	models.Task
	IsOverdue bool `json:"is_overdue"`
}

func newTaskResponse(task *models.Task, today models.Date) taskResponse {
	return taskResponse{Task: *task, IsOverdue: task.IsOverdue(today)}
}

func newTaskResponses(tasks []models.Task, today models.Date) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, newTaskResponse(&tasks[i], today))
	}
	return out
}

// createTaskRequest keeps due_date as text so a malformed date is reported
// against its field.
type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *int    `json:"priority"`
}

func (r createTaskRequest) input() (repository.TaskInput, error) {
	in := repository.TaskInput{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
	}
	if r.DueDate != nil && *r.DueDate != "" {
		d, err := models.ParseDate(*r.DueDate)
		if err != nil {
			return in, invalidDueDate()
		}
		in.DueDate = &d
	}
	return in, nil
}

type updateTaskRequest struct {
	Title       *string                 `json:"title"`
	Description models.Optional[string] `json:"description"`
	DueDate     models.Optional[string] `json:"due_date"`
	Priority    *int                    `json:"priority"`
	IsCompleted *bool                   `json:"is_completed"`
}

func (r updateTaskRequest) patch() (repository.TaskPatch, error) {
	p := repository.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		IsCompleted: r.IsCompleted,
	}
	if r.DueDate.Set {
		if r.DueDate.Value == nil || *r.DueDate.Value == "" {
			p.DueDate = models.Null[models.Date]()
		} else {
			d, err := models.ParseDate(*r.DueDate.Value)
			if err != nil {
				return p, invalidDueDate()
			}
			p.DueDate = models.Some(d)
		}
	}
	return p, nil
}

func invalidDueDate() error {
	return validation.Errors{"due_date": "The due_date field must be a valid date."}
}

func (h *TaskHandler) List(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		notFound(c, "Project not found")
		return
	}

	list, err := h.tasks.List(c.Request.Context(), callerID(c), projectID)
	if err != nil {
		fail(c, h.log, err, "Error retrieving tasks")
		return
	}
	okWithStats(c, "Tasks retrieved successfully", newTaskResponses(list.Tasks, list.Today), list.Stats)
}

func (h *TaskHandler) Create(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		notFound(c, "Project not found")
		return
	}

	var req createTaskRequest
	if err := bindJSON(c, &req, true); err != nil {
		fail(c, h.log, err, "Error creating task")
		return
	}
	in, err := req.input()
	if err != nil {
		fail(c, h.log, err, "Error creating task")
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), callerID(c), projectID, in)
	if err != nil {
		fail(c, h.log, err, "Error creating task")
		return
	}
	created(c, "Task created successfully", newTaskResponse(task, h.tasks.Today()))
}

func (h *TaskHandler) Get(c *gin.Context) {
	projectID, taskID, valid := taskPath(c)
	if !valid {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), callerID(c), projectID, taskID)
	if err != nil {
		fail(c, h.log, err, "Error retrieving task")
		return
	}
	ok(c, "Task retrieved successfully", newTaskResponse(task, h.tasks.Today()))
}

func (h *TaskHandler) Update(c *gin.Context) {
	projectID, taskID, valid := taskPath(c)
	if !valid {
		return
	}

	var req updateTaskRequest
	if err := bindJSON(c, &req, true); err != nil {
		fail(c, h.log, err, "Error updating task")
		return
	}
	patch, err := req.patch()
	if err != nil {
		fail(c, h.log, err, "Error updating task")
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), callerID(c), projectID, taskID, patch)
	if err != nil {
		fail(c, h.log, err, "Error updating task")
		return
	}
	ok(c, "Task updated successfully", newTaskResponse(task, h.tasks.Today()))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	projectID, taskID, valid := taskPath(c)
	if !valid {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), callerID(c), projectID, taskID); err != nil {
		fail(c, h.log, err, "Error deleting task")
		return
	}
	ok(c, "Task deleted successfully", nil)
}

func (h *TaskHandler) Complete(c *gin.Context) {
	projectID, taskID, valid := taskPath(c)
	if !valid {
		return
	}

	task, err := h.tasks.Complete(c.Request.Context(), callerID(c), projectID, taskID)
	if err != nil {
		fail(c, h.log, err, "Error completing task")
		return
	}
	ok(c, "Task marked as completed", newTaskResponse(task, h.tasks.Today()))
}

func (h *TaskHandler) Uncomplete(c *gin.Context) {
	projectID, taskID, valid := taskPath(c)
	if !valid {
		return
	}

	task, err := h.tasks.Uncomplete(c.Request.Context(), callerID(c), projectID, taskID)
	if err != nil {
		fail(c, h.log, err, "Error reopening task")
		return
	}
	ok(c, "Task marked as pending", newTaskResponse(task, h.tasks.Today()))
}

// taskPath parses both path ids and answers 404 itself when either is
// malformed.
func taskPath(c *gin.Context) (projectID, taskID uuid.UUID, valid bool) {
	if projectID, valid = pathID(c, "id"); !valid {
		notFound(c, "Project not found")
		return
	}
	if taskID, valid = pathID(c, "taskId"); !valid {
		notFound(c, "Task not found")
		return
	}
	return
}
