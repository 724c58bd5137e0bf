// internal/repository/postgres_test.go
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/gurkanbulca/projecttracker/internal/database"
	"github.com/gurkanbulca/projecttracker/internal/database/dbtest"
	"github.com/gurkanbulca/projecttracker/internal/models"
)

func setupPostgres(t *testing.T, driver string) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return dbtest.OpenWith(t, database.Config{
		Driver:   driver,
		Host:     host,
		Port:     port.Int(),
		User:     "test",
		Password: "test",
		DBName:   "test",
		SSLMode:  "disable",
	})
}

func TestRepositories_Postgres(t *testing.T) {
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			r := newRepos(setupPostgres(t, driver))
			ctx := context.Background()
			owner, stranger := uuid.New(), uuid.New()

			project, err := r.projects.Create(ctx, owner, ProjectInput{Name: "P"})
			require.NoError(t, err)

			_, err = r.projects.Get(ctx, stranger, project.ID)
			assert.ErrorIs(t, err, ErrProjectNotFound)

			undated := r.createTask(t, owner, project.ID, TaskInput{Title: "undated", Priority: ptr(5)})
			soon := r.createTask(t, owner, project.ID, TaskInput{Title: "soon", DueDate: ptr(r.today)})
			late := r.createTask(t, owner, project.ID, TaskInput{Title: "late", DueDate: ptr(r.today.AddDays(2))})
			_, err = r.tasks.Update(ctx, owner, project.ID, late.ID, TaskPatch{DueDate: models.Some(r.today.AddDays(-1))})
			require.NoError(t, err)
			_, err = r.tasks.Complete(ctx, owner, project.ID, soon.ID)
			require.NoError(t, err)

			_, err = r.tasks.Create(ctx, owner, project.ID, TaskInput{Title: "x", DueDate: ptr(r.today.AddDays(-1))})
			requireFieldError(t, err, "due_date")

			detail, err := r.projects.Get(ctx, owner, project.ID)
			require.NoError(t, err)
			assert.Equal(t, []uuid.UUID{late.ID, undated.ID, soon.ID}, taskIDs(detail.Tasks))
			assert.Equal(t, models.TaskStats{Total: 3, Completed: 1, Pending: 2, Overdue: 1}, detail.Stats)
			require.NotNil(t, detail.Tasks[0].DueDate)
			assert.Equal(t, r.today.AddDays(-1).String(), detail.Tasks[0].DueDate.String())

			projects, err := r.projects.List(ctx, owner)
			require.NoError(t, err)
			require.Len(t, projects, 1)
			assert.Equal(t, 3, projects[0].TaskCount)
			assert.Equal(t, 1, projects[0].CompletedTaskCount)

			_, err = r.users.Create(ctx, "A", "a@example.com", "hash")
			require.NoError(t, err)
			_, err = r.users.Create(ctx, "B", "a@example.com", "hash")
			assert.ErrorIs(t, err, ErrEmailTaken)

			require.NoError(t, r.projects.Delete(ctx, owner, project.ID))
			var remaining int
			require.NoError(t, r.db.GetContext(ctx, &remaining,
				r.db.Rebind("SELECT COUNT(*) FROM tasks WHERE project_id = ?"), project.ID))
			assert.Zero(t, remaining)
		})
	}
}

func TestRepositories_ConcurrentWrites_Postgres(t *testing.T) {
	db := setupPostgres(t, "pgx")
	db.SetMaxOpenConns(25)

	runConcurrentWrites(t, newRepos(db))
}
