// internal/handler/project_handler.go
package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gurkanbulca/projecttracker/internal/models"
	"github.com/gurkanbulca/projecttracker/internal/repository"
)

// ProjectStore is the caller-scoped project storage the handler needs.
type ProjectStore interface {
	List(ctx context.Context, callerID uuid.UUID) ([]models.ProjectSummary, error)
	Create(ctx context.Context, callerID uuid.UUID, in repository.ProjectInput) (*models.Project, error)
	Get(ctx context.Context, callerID, projectID uuid.UUID) (*models.ProjectDetail, error)
	Update(ctx context.Context, callerID, projectID uuid.UUID, patch repository.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, callerID, projectID uuid.UUID) error
	Archive(ctx context.Context, callerID, projectID uuid.UUID) (*models.Project, error)
	Unarchive(ctx context.Context, callerID, projectID uuid.UUID) (*models.Project, error)
}

type ProjectHandler struct {
	projects ProjectStore
	log      zerolog.Logger
}

func NewProjectHandler(projects ProjectStore, log zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, log: log}
}

// projectDetailResponse is a project with its tasks, each carrying its
// overdue flag.
type projectDetailResponse struct {
	models.Project
	Tasks []taskResponse `json:"tasks"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context(), callerID(c))
	if err != nil {
		fail(c, h.log, err, "Error retrieving projects")
		return
	}
	ok(c, "Projects retrieved successfully", projects)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var in repository.ProjectInput
	if err := bindJSON(c, &in, true); err != nil {
		fail(c, h.log, err, "Error creating project")
		return
	}

	project, err := h.projects.Create(c.Request.Context(), callerID(c), in)
	if err != nil {
		fail(c, h.log, err, "Error creating project")
		return
	}
	created(c, "Project created successfully", project)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		notFound(c, "Project not found")
		return
	}

	detail, err := h.projects.Get(c.Request.Context(), callerID(c), projectID)
	if err != nil {
		fail(c, h.log, err, "Error retrieving project")
		return
	}

	okWithStats(c, "Project retrieved successfully", projectDetailResponse{
		Project: detail.Project,
		Tasks:   newTaskResponses(detail.Tasks, detail.Today),
	}, detail.Stats)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		notFound(c, "Project not found")
		return
	}

	var patch repository.ProjectPatch
	if err := bindJSON(c, &patch, true); err != nil {
		fail(c, h.log, err, "Error updating project")
		return
	}

	project, err := h.projects.Update(c.Request.Context(), callerID(c), projectID, patch)
	if err != nil {
		fail(c, h.log, err, "Error updating project")
		return
	}
	ok(c, "Project updated successfully", project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		notFound(c, "Project not found")
		return
	}

	if err := h.projects.Delete(c.Request.Context(), callerID(c), projectID); err != nil {
		fail(c, h.log, err, "Error deleting project")
		return
	}
	ok(c, "Project deleted successfully", nil)
}

func (h *ProjectHandler) Archive(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		notFound(c, "Project not found")
		return
	}

	project, err := h.projects.Archive(c.Request.Context(), callerID(c), projectID)
	if err != nil {
		fail(c, h.log, err, "Error archiving project")
		return
	}
	ok(c, "Project archived successfully", project)
}

func (h *ProjectHandler) Unarchive(c *gin.Context) {
	projectID, valid := pathID(c, "id")
	if !valid {
		notFound(c, "Project not found")
		return
	}

	project, err := h.projects.Unarchive(c.Request.Context(), callerID(c), projectID)
	if err != nil {
		fail(c, h.log, err, "Error unarchiving project")
		return
	}
	ok(c, "Project unarchived successfully", project)
}
