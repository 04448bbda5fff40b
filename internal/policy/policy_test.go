package policy

import (
	"testing"

	"github.com/ksuzuki/task-tracker-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint64) *uint64 {
	return &v
}

func TestScopeFor(t *testing.T) {
	manager := Identity{UserID: 1, Role: models.RoleManager}
	worker := Identity{UserID: 2, Role: models.RoleWorker}

	scope := ScopeFor(manager)
	assert.NotNil(t, scope.CreatedByID)
	assert.Equal(t, uint64(1), *scope.CreatedByID)
	assert.Nil(t, scope.AssignedToID)

	scope = ScopeFor(worker)
	assert.Nil(t, scope.CreatedByID)
	assert.NotNil(t, scope.AssignedToID)
	assert.Equal(t, uint64(2), *scope.AssignedToID)
}

func TestCanCreateTask(t *testing.T) {
	assert.True(t, CanCreateTask(Identity{UserID: 1, Role: models.RoleManager}))
	assert.False(t, CanCreateTask(Identity{UserID: 2, Role: models.RoleWorker}))
}

func TestCanReadTask(t *testing.T) {
	task := &models.Task{ID: 10, CreatedByID: 1, AssignedToID: uintPtr(2)}
	unassigned := &models.Task{ID: 11, CreatedByID: 1}

	tests := []struct {
		name  string
		actor Identity
		task  *models.Task
		want  bool
	}{
		{"creating manager", Identity{UserID: 1, Role: models.RoleManager}, task, true},
		{"other manager", Identity{UserID: 5, Role: models.RoleManager}, task, true},
		{"assigned worker", Identity{UserID: 2, Role: models.RoleWorker}, task, true},
		{"other worker", Identity{UserID: 3, Role: models.RoleWorker}, task, false},
		{"worker on unassigned task", Identity{UserID: 2, Role: models.RoleWorker}, unassigned, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadTask(tt.actor, tt.task))
		})
	}
}

func TestCanUpdateTask_OnlyCreator(t *testing.T) {
	task := &models.Task{ID: 10, CreatedByID: 1, AssignedToID: uintPtr(2)}

	assert.True(t, CanUpdateTask(Identity{UserID: 1, Role: models.RoleManager}, task))
	assert.False(t, CanUpdateTask(Identity{UserID: 5, Role: models.RoleManager}, task))
	assert.False(t, CanUpdateTask(Identity{UserID: 2, Role: models.RoleWorker}, task))
}

func TestCanDeleteTask_OnlyCreator(t *testing.T) {
	task := &models.Task{ID: 10, CreatedByID: 1, AssignedToID: uintPtr(2)}

	assert.True(t, CanDeleteTask(Identity{UserID: 1, Role: models.RoleManager}, task))
	assert.False(t, CanDeleteTask(Identity{UserID: 5, Role: models.RoleManager}, task))
	assert.False(t, CanDeleteTask(Identity{UserID: 2, Role: models.RoleWorker}, task))
}

func TestCanUpdateStatus_AssigneeOnly(t *testing.T) {
	task := &models.Task{ID: 10, CreatedByID: 1, AssignedToID: uintPtr(2)}
	unassigned := &models.Task{ID: 11, CreatedByID: 1}

	assert.True(t, CanUpdateStatus(Identity{UserID: 2, Role: models.RoleWorker}, task))
	assert.False(t, CanUpdateStatus(Identity{UserID: 3, Role: models.RoleWorker}, task))
	// The creating manager does not get the lifecycle path.
	assert.False(t, CanUpdateStatus(Identity{UserID: 1, Role: models.RoleManager}, task))
	assert.False(t, CanUpdateStatus(Identity{UserID: 2, Role: models.RoleWorker}, unassigned))
}

func TestCanComment_AnyAuthenticatedActor(t *testing.T) {
	task := &models.Task{ID: 10, CreatedByID: 1, AssignedToID: uintPtr(2)}

	assert.True(t, CanComment(Identity{UserID: 1, Role: models.RoleManager}, task))
	assert.True(t, CanComment(Identity{UserID: 2, Role: models.RoleWorker}, task))
	// A worker with no relation to the task may still comment.
	assert.True(t, CanComment(Identity{UserID: 9, Role: models.RoleWorker}, task))
	assert.False(t, CanComment(Identity{}, task))
}

func TestCanListWorkers(t *testing.T) {
	assert.True(t, CanListWorkers(Identity{UserID: 1, Role: models.RoleManager}))
	assert.False(t, CanListWorkers(Identity{UserID: 2, Role: models.RoleWorker}))
}
