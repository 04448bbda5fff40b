package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ksuzuki/task-tracker-api/internal/models"
	"github.com/ksuzuki/task-tracker-api/internal/policy"
	"github.com/ksuzuki/task-tracker-api/internal/repository"
	"github.com/ksuzuki/task-tracker-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskAccessDenied    = errors.New("access denied")
	ErrTitleRequired       = errors.New("title is required")
	ErrInvalidStatus       = errors.New("invalid task status")
	ErrInvalidPriority     = errors.New("invalid task priority")
	ErrNegativeHours       = errors.New("hours cannot be negative")
	ErrCommentTextRequired = errors.New("comment text is required")
	ErrAssigneeNotFound    = errors.New("assigned user not found")
	ErrAssigneeNotWorker   = errors.New("tasks can only be assigned to workers")
)

// taskPreloads are the relations loaded for single-task responses.
var taskPreloads = []string{"CreatedBy", "AssignedTo", "Comments"}

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title          string
	Description    string
	Priority       models.TaskPriority
	AssignedToID   *uint64
	DueDate        *time.Time
	EstimatedHours float64
}

// ReplaceTaskInput represents the full-field update. Every field in it
// overwrites the stored value; absent request fields arrive as zero values and
// clear what was there before. Status is the one optional field: when present
// it is written verbatim, when absent the stored status stays.
type ReplaceTaskInput struct {
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	AssignedToID   *uint64
	DueDate        *time.Time
	EstimatedHours float64
}

// ListTasks returns the tasks visible to the actor, newest first.
func (s *TaskService) ListTasks(actor policy.Identity, pagination utils.PaginationParams) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Scope:      policy.ScopeFor(actor),
		Pagination: pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data if the actor may read it.
func (s *TaskService) GetTask(actor policy.Identity, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanReadTask(actor, task) {
		return nil, ErrTaskAccessDenied
	}

	return task, nil
}

// CreateTask creates a new task. The creator is always the actor, regardless
// of anything the caller supplied.
func (s *TaskService) CreateTask(actor policy.Identity, input CreateTaskInput) (*models.Task, error) {
	if !policy.CanCreateTask(actor) {
		return nil, ErrTaskAccessDenied
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidPriority(string(input.Priority)) {
		return nil, ErrInvalidPriority
	}
	if input.EstimatedHours < 0 {
		return nil, ErrNegativeHours
	}
	if err := s.validateAssignee(input.AssignedToID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:          title,
		Description:    input.Description,
		Status:         models.TaskStatusPending,
		Priority:       input.Priority,
		AssignedToID:   input.AssignedToID,
		CreatedByID:    actor.UserID,
		DueDate:        input.DueDate,
		EstimatedHours: input.EstimatedHours,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// ReplaceTask overwrites the editable fields of a task. This is a blunt
// replace, not a patch: a field omitted from the request clears the stored
// value, including the assignment. A supplied status is written verbatim
// without the lifecycle date side effects; the recorded dates and actual
// hours survive untouched either way.
func (s *TaskService) ReplaceTask(actor policy.Identity, taskID uint64, input ReplaceTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanUpdateTask(actor, task) {
		return nil, ErrTaskAccessDenied
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidPriority(string(input.Priority)) {
		return nil, ErrInvalidPriority
	}
	if input.Status != "" && !models.ValidStatus(string(input.Status)) {
		return nil, ErrInvalidStatus
	}
	if input.EstimatedHours < 0 {
		return nil, ErrNegativeHours
	}
	if err := s.validateAssignee(input.AssignedToID); err != nil {
		return nil, err
	}

	task.Title = title
	task.Description = input.Description
	task.Priority = input.Priority
	task.AssignedToID = input.AssignedToID
	task.DueDate = input.DueDate
	task.EstimatedHours = input.EstimatedHours
	if input.Status != "" {
		task.Status = input.Status
	}

	if err := s.taskRepo.Save(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// UpdateStatus applies a status transition with its date side effects. Only
// the assigned worker holds this path.
func (s *TaskService) UpdateStatus(actor policy.Identity, taskID uint64, input StatusChangeInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanUpdateStatus(actor, task) {
		return nil, ErrTaskAccessDenied
	}

	if !models.ValidStatus(string(input.Status)) {
		return nil, ErrInvalidStatus
	}
	if input.ActualHours != nil && *input.ActualHours < 0 {
		return nil, ErrNegativeHours
	}

	updates := statusUpdateColumns(task, input, time.Now())
	if err := s.taskRepo.UpdateStatus(task.ID, updates); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// DeleteTask removes a task if the actor is the creating manager.
func (s *TaskService) DeleteTask(actor policy.Identity, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanDeleteTask(actor, task) {
		return ErrTaskAccessDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// AddComment appends a comment with a snapshot of the author's current name.
// Any authenticated actor who can load the task may comment.
func (s *TaskService) AddComment(actor policy.Identity, taskID uint64, text string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !policy.CanComment(actor, task) {
		return nil, ErrTaskAccessDenied
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrCommentTextRequired
	}

	author, err := s.userRepo.FindByID(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find comment author: %w", err)
	}

	comment := &models.TaskComment{
		TaskID:   task.ID,
		UserID:   author.ID,
		UserName: author.Name,
		Text:     text,
	}

	if err := s.taskRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, taskPreloads...)
}

// Stats computes the aggregate counts over the actor's visible task set.
func (s *TaskService) Stats(actor policy.Identity) (*repository.TaskStats, error) {
	stats, err := s.taskRepo.Stats(policy.ScopeFor(actor), time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	return stats, nil
}

// validateAssignee checks that an assignee, when present, exists and holds the
// worker role.
func (s *TaskService) validateAssignee(assigneeID *uint64) error {
	if assigneeID == nil {
		return nil
	}

	user, err := s.userRepo.FindByID(*assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to verify assignee: %w", err)
	}

	if user.Role != models.RoleWorker {
		return ErrAssigneeNotWorker
	}

	return nil
}
