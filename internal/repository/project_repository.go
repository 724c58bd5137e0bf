// internal/repository/project_repository.go
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

var projectColumns = []string{
	"id", "owner_id", "name", "description", "is_archived", "created_at", "updated_at",
}

// ProjectInput is the payload for creating a project.
type ProjectInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
}

// ProjectPatch is a partial update. Nil pointers and unset optionals leave
// the column unchanged; an explicit null clears the description.
type ProjectPatch struct {
	Name        *string                 `json:"name" validate:"omitnil,min=1,max=255"`
	Description models.Optional[string] `json:"description" validate:"-"`
	IsArchived  *bool                   `json:"is_archived"`
}

func (in *ProjectInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
}

func (p *ProjectPatch) normalize() {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
}

// ProjectRepository stores projects. Every method is scoped to the caller:
// a project owned by someone else behaves exactly like a missing one.
type ProjectRepository struct {
	store
}

func NewProjectRepository(db *database.DB, clock Clock) *ProjectRepository {
	return &ProjectRepository{store: newStore(db, clock)}
}

// listProjectsQuery aggregates task counters in the same statement as the
// project rows.
const listProjectsQuery = `
SELECT p.id, p.owner_id, p.name, p.description, p.is_archived, p.created_at, p.updated_at,
	COUNT(t.id) AS task_count,
	COALESCE(SUM(CASE WHEN t.is_completed THEN 1 ELSE 0 END), 0) AS completed_task_count
FROM projects p
LEFT JOIN tasks t ON t.project_id = p.id
WHERE p.owner_id = ?
GROUP BY p.id, p.owner_id, p.name, p.description, p.is_archived, p.created_at, p.updated_at
ORDER BY p.created_at DESC, p.id DESC`

// List returns the caller's projects, newest first, with task counters.
func (r *ProjectRepository) List(ctx context.Context, callerID uuid.UUID) ([]models.ProjectSummary, error) {
	projects := []models.ProjectSummary{}
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(listProjectsQuery)
		if err := tx.SelectContext(ctx, &projects, query, callerID); err != nil {
			return fmt.Errorf("list projects: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// Create validates in and stores a new, non-archived project owned by the
// caller.
func (r *ProjectRepository) Create(ctx context.Context, callerID uuid.UUID, in ProjectInput) (*models.Project, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := r.clock.Timestamp()
	project := &models.Project{
		ID:          uuid.New(),
		OwnerID:     callerID,
		Name:        in.Name,
		Description: in.Description,
		IsArchived:  false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		insert := r.sql.Insert(database.ProjectsTable).
			Columns(projectColumns...).
			Values(project.ID, project.OwnerID, project.Name, project.Description,
				project.IsArchived, project.CreatedAt, project.UpdatedAt)
		if _, err := exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns the caller's project with its ordered tasks and stats.
func (r *ProjectRepository) Get(ctx context.Context, callerID, projectID uuid.UUID) (*models.ProjectDetail, error) {
	var detail *models.ProjectDetail
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		project, err := r.findOwned(ctx, tx, callerID, projectID, false)
		if err != nil {
			return err
		}
		tasks, err := r.listTasks(ctx, tx, projectID)
		if err != nil {
			return err
		}
		today := r.clock.Today()
		detail = &models.ProjectDetail{
			Project: *project,
			Tasks:   tasks,
			Stats:   models.ComputeStats(tasks, today),
			Today:   today,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// Update applies patch to the caller's project. Ownership is checked before
// the patch is validated.
func (r *ProjectRepository) Update(ctx context.Context, callerID, projectID uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	patch.normalize()

	var updated *models.Project
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		project, err := r.findOwned(ctx, tx, callerID, projectID, true)
		if err != nil {
			return err
		}
		if err := validation.Struct(patch); err != nil {
			return err
		}

		changed := false
		if patch.Name != nil {
			project.Name = *patch.Name
			changed = true
		}
		if patch.Description.Set {
			project.Description = patch.Description.Value
			changed = true
		}
		if patch.IsArchived != nil {
			project.IsArchived = *patch.IsArchived
			changed = true
		}
		if changed {
			if err := r.save(ctx, tx, project); err != nil {
				return err
			}
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the caller's project together with all of its tasks.
func (r *ProjectRepository) Delete(ctx context.Context, callerID, projectID uuid.UUID) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := r.findOwned(ctx, tx, callerID, projectID, true); err != nil {
			return err
		}

		deleteTasks := r.sql.Delete(database.TasksTable).
			Where(sql.EQ("project_id", projectID))
		if _, err := exec(ctx, tx, deleteTasks); err != nil {
			return fmt.Errorf("delete project tasks: %w", err)
		}

		deleteProject := r.sql.Delete(database.ProjectsTable).
			Where(sql.And(sql.EQ("id", projectID), sql.EQ("owner_id", callerID)))
		n, err := exec(ctx, tx, deleteProject)
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if n == 0 {
			return ErrProjectNotFound
		}
		return nil
	})
}

// Archive marks the caller's project archived. Archiving an archived
// project is a no-op.
func (r *ProjectRepository) Archive(ctx context.Context, callerID, projectID uuid.UUID) (*models.Project, error) {
	return r.setArchived(ctx, callerID, projectID, true)
}

// Unarchive is the inverse of Archive and equally idempotent.
func (r *ProjectRepository) Unarchive(ctx context.Context, callerID, projectID uuid.UUID) (*models.Project, error) {
	return r.setArchived(ctx, callerID, projectID, false)
}

func (r *ProjectRepository) setArchived(ctx context.Context, callerID, projectID uuid.UUID, archived bool) (*models.Project, error) {
	var updated *models.Project
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		project, err := r.findOwned(ctx, tx, callerID, projectID, true)
		if err != nil {
			return err
		}
		if project.IsArchived != archived {
			project.IsArchived = archived
			if err := r.save(ctx, tx, project); err != nil {
				return err
			}
		}
		updated = project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ProjectRepository) save(ctx context.Context, tx *sqlx.Tx, project *models.Project) error {
	project.UpdatedAt = r.clock.Timestamp()
	update := r.sql.Update(database.ProjectsTable).
		Set("name", project.Name).
		Set("description", project.Description).
		Set("is_archived", project.IsArchived).
		Set("updated_at", project.UpdatedAt).
		Where(sql.And(sql.EQ("id", project.ID), sql.EQ("owner_id", project.OwnerID)))
	if _, err := exec(ctx, tx, update); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// findOwned loads a project only if callerID owns it. With lock set the row
// is held for the rest of the transaction where the dialect supports it.
func (s *store) findOwned(ctx context.Context, tx *sqlx.Tx, callerID, projectID uuid.UUID, lock bool) (*models.Project, error) {
	t := s.sql.Table(database.ProjectsTable)
	sel := s.sql.Select(projectColumns...).
		From(t).
		Where(sql.And(sql.EQ("id", projectID), sql.EQ("owner_id", callerID)))
	if lock && s.lockable() {
		sel.ForUpdate()
	}

	var project models.Project
	if err := get(ctx, tx, &project, sel); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("query project: %w", err)
	}
	return &project, nil
}
