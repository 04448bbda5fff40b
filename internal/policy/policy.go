// Package policy holds the pure access-control decisions for tasks. Every rule is
// a function of the resolved request identity and the task record; nothing here
// touches the database or the HTTP layer.
package policy

import (
	"github.com/ksuzuki/task-tracker-api/internal/models"
)

// Identity is the authenticated actor attached to a request, resolved once by the
// auth middleware.
type Identity struct {
	UserID uint64
	Role   models.UserRole
}

// IsManager reports whether the actor holds the manager role.
func (i Identity) IsManager() bool {
	return i.Role == models.RoleManager
}

// ListScope narrows task listing and statistics to the tasks an actor may see:
// managers see the tasks they created, workers the tasks assigned to them.
type ListScope struct {
	CreatedByID  *uint64
	AssignedToID *uint64
}

// ScopeFor returns the list scope for the actor.
func ScopeFor(actor Identity) ListScope {
	if actor.IsManager() {
		return ListScope{CreatedByID: &actor.UserID}
	}
	return ListScope{AssignedToID: &actor.UserID}
}

// CanCreateTask allows task creation for managers only.
func CanCreateTask(actor Identity) bool {
	return actor.IsManager()
}

// CanReadTask allows managers to read any task and workers to read only tasks
// assigned to them.
func CanReadTask(actor Identity, task *models.Task) bool {
	if actor.IsManager() {
		return true
	}
	return task.AssignedToID != nil && *task.AssignedToID == actor.UserID
}

// CanUpdateTask allows the full-field update only for the manager who created
// the task. Other managers are denied.
func CanUpdateTask(actor Identity, task *models.Task) bool {
	return actor.IsManager() && task.CreatedByID == actor.UserID
}

// CanDeleteTask allows deletion only for the manager who created the task.
func CanDeleteTask(actor Identity, task *models.Task) bool {
	return actor.IsManager() && task.CreatedByID == actor.UserID
}

// CanUpdateStatus allows the status transition only for the worker the task is
// assigned to. The creating manager is not granted this path; a manager can
// overwrite status through the full update, which skips the date side effects.
func CanUpdateStatus(actor Identity, task *models.Task) bool {
	return task.AssignedToID != nil && *task.AssignedToID == actor.UserID
}

// CanComment allows any authenticated actor who could load the task to comment,
// including workers not assigned to it. Deliberately permissive.
func CanComment(actor Identity, task *models.Task) bool {
	return actor.UserID != 0
}

// CanListWorkers allows the worker directory for managers only.
func CanListWorkers(actor Identity) bool {
	return actor.IsManager()
}
