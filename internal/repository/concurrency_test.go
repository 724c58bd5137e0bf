// internal/repository/concurrency_test.go
package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurkanbulca/projecttracker/internal/database"
	"github.com/gurkanbulca/projecttracker/internal/database/dbtest"
	"github.com/gurkanbulca/projecttracker/internal/models"
)

const concurrentWriters = 20

// runConcurrentWrites has many goroutines patch the same project and task
// at once. Every write must succeed and the last one wins.
func runConcurrentWrites(t *testing.T, r *testRepos) {
	t.Helper()
	ctx := context.Background()
	owner := uuid.New()
	project := r.createProject(t, owner, "Shared")
	task := r.createTask(t, owner, project.ID, TaskInput{Title: "contended"})

	written := make(map[string]bool, concurrentWriters)
	for i := 0; i < concurrentWriters; i++ {
		written[fmt.Sprintf("writer %d", i)] = true
	}

	var wg sync.WaitGroup
	errs := make(chan error, 3*concurrentWriters)
	for i := 0; i < concurrentWriters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			description := fmt.Sprintf("writer %d", i)
			if _, err := r.projects.Update(ctx, owner, project.ID, ProjectPatch{Description: models.Some(description)}); err != nil {
				errs <- fmt.Errorf("update project: %w", err)
			}
			if _, err := r.tasks.Update(ctx, owner, project.ID, task.ID, TaskPatch{Description: models.Some(description), Priority: ptr(i%5 + 1)}); err != nil {
				errs <- fmt.Errorf("update task: %w", err)
			}
			if _, err := r.tasks.Complete(ctx, owner, project.ID, task.ID); err != nil {
				errs <- fmt.Errorf("complete task: %w", err)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	detail, err := r.projects.Get(ctx, owner, project.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Description)
	assert.True(t, written[*detail.Description], "unexpected description %q", *detail.Description)

	require.Len(t, detail.Tasks, 1)
	got := detail.Tasks[0]
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.Description)
	assert.True(t, written[*got.Description], "unexpected description %q", *got.Description)
	assert.GreaterOrEqual(t, got.Priority, models.PriorityMin)
	assert.LessOrEqual(t, got.Priority, models.PriorityMax)
	assert.Equal(t, models.TaskStats{Total: 1, Completed: 1}, detail.Stats)
}

func TestRepositories_ConcurrentWrites_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.db")
	db := dbtest.OpenWith(t, database.Config{
		Driver:       "sqlite3",
		Path:         "file:" + path + "?_fk=1",
		MaxOpenConns: 25,
	})

	runConcurrentWrites(t, newRepos(db))
}
