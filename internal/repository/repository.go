package repository

import (
	"time"

	"github.com/ksuzuki/task-tracker-api/internal/models"
	"github.com/ksuzuki/task-tracker-api/internal/policy"
	"github.com/ksuzuki/task-tracker-api/internal/utils"
)

// TaskFilter holds the scope and pagination for listing tasks.
type TaskFilter struct {
	Scope      policy.ListScope
	Pagination utils.PaginationParams
}

// TaskStats holds the aggregate counts for a task scope.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Blocked    int64 `json:"blocked"`
	Overdue    int64 `json:"overdue"`
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks within a scope, newest first, with pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Save writes all fields of a task record
	Save(task *models.Task) error

	// UpdateStatus applies status-transition columns in a single UPDATE.
	// The start_date and completed_date entries are written set-once.
	UpdateStatus(id uint64, updates map[string]interface{}) error

	// Delete removes a task and its comments
	Delete(id uint64) error

	// AddComment appends a comment as a single atomic insert
	AddComment(comment *models.TaskComment) error

	// Stats computes aggregate counts for a scope as of now
	Stats(scope policy.ListScope, now time.Time) (*TaskStats, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email (stored lower-case)
	FindByEmail(email string) (*models.User, error)

	// ListWorkers lists all users with the worker role, sorted by name
	ListWorkers() ([]models.User, error)
}
