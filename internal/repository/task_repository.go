package repository

import (
	"time"

	"github.com/ksuzuki/task-tracker-api/internal/database"
	"github.com/ksuzuki/task-tracker-api/internal/models"
	"github.com/ksuzuki/task-tracker-api/internal/policy"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		if p == "Comments" {
			// Comments are an ordered, append-only sequence.
			query = query.Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("task_comments.id ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// applyScope narrows a query to the tasks visible inside the scope. An empty
// scope matches nothing: visibility is fail-closed.
func applyScope(query *gorm.DB, scope policy.ListScope) *gorm.DB {
	switch {
	case scope.CreatedByID != nil:
		return query.Where("created_by_id = ?", *scope.CreatedByID)
	case scope.AssignedToID != nil:
		return query.Where("assigned_to_id = ?", *scope.AssignedToID)
	default:
		return query.Where("1 = 0")
	}
}

// List retrieves tasks within a scope, newest first, with pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := applyScope(r.db.Model(&models.Task{}), filter.Scope)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	if err := listQuery.
		Preload("CreatedBy").
		Preload("AssignedTo").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Save writes all fields of a task record
func (r *GormTaskRepository) Save(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateStatus applies status-transition columns in a single UPDATE. The date
// columns are wrapped in COALESCE so set-once semantics hold even against a
// concurrent writer.
func (r *GormTaskRepository) UpdateStatus(id uint64, updates map[string]interface{}) error {
	if v, ok := updates["start_date"]; ok {
		updates["start_date"] = gorm.Expr("COALESCE(start_date, ?)", v)
	}
	if v, ok := updates["completed_date"]; ok {
		updates["completed_date"] = gorm.Expr("COALESCE(completed_date, ?)", v)
	}

	return r.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a task and its comments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// AddComment appends a comment as a single atomic insert
func (r *GormTaskRepository) AddComment(comment *models.TaskComment) error {
	return r.db.Create(comment).Error
}

// Stats computes aggregate counts for a scope in one SELECT. Counts are always
// computed fresh; there is no caching layer.
func (r *GormTaskRepository) Stats(scope policy.ListScope, now time.Time) (*TaskStats, error) {
	var stats TaskStats

	query := applyScope(r.db.Model(&models.Task{}), scope).
		Select(`COUNT(*) AS total,
			COUNT(CASE WHEN status = ? THEN 1 END) AS pending,
			COUNT(CASE WHEN status = ? THEN 1 END) AS in_progress,
			COUNT(CASE WHEN status = ? THEN 1 END) AS completed,
			COUNT(CASE WHEN status = ? THEN 1 END) AS blocked,
			COUNT(CASE WHEN due_date IS NOT NULL AND due_date < ? AND status <> ? THEN 1 END) AS overdue`,
			models.TaskStatusPending,
			models.TaskStatusInProgress,
			models.TaskStatusCompleted,
			models.TaskStatusBlocked,
			now,
			models.TaskStatusCompleted,
		)

	if err := query.Scan(&stats).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
