package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ksuzuki/task-tracker-api/internal/dto"
	apierrors "github.com/ksuzuki/task-tracker-api/internal/errors"
	"github.com/ksuzuki/task-tracker-api/internal/middleware"
	"github.com/ksuzuki/task-tracker-api/internal/models"
	"github.com/ksuzuki/task-tracker-api/internal/services"
	"github.com/ksuzuki/task-tracker-api/internal/utils"
)

// TaskHandler coordinates task-related HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the actor: created tasks for a
// manager, assigned tasks for a worker.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(actor, params)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params, total))
}

// GetTask returns a single task after the access check.
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(actor, taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task. Manager only; the creator is always the
// actor regardless of the payload.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title          string     `json:"title" binding:"required"`
		Description    string     `json:"description"`
		Priority       string     `json:"priority"`
		AssignedToID   *uint64    `json:"assigned_to_id"`
		DueDate        *time.Time `json:"due_date"`
		EstimatedHours float64    `json:"estimated_hours"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       models.TaskPriority(req.Priority),
		AssignedToID:   req.AssignedToID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ReplaceTask overwrites the editable fields of a task. Absent fields clear
// the stored values; omitting assigned_to_id removes the assignment. A
// supplied status is overwritten without the lifecycle date side effects.
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type ReplaceTaskRequest struct {
		Title          string     `json:"title" binding:"required"`
		Description    string     `json:"description"`
		Status         string     `json:"status"`
		Priority       string     `json:"priority"`
		AssignedToID   *uint64    `json:"assigned_to_id"`
		DueDate        *time.Time `json:"due_date"`
		EstimatedHours float64    `json:"estimated_hours"`
	}

	var req ReplaceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.ReplaceTask(actor, taskID, services.ReplaceTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         models.TaskStatus(req.Status),
		Priority:       models.TaskPriority(req.Priority),
		AssignedToID:   req.AssignedToID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateStatus applies a status transition with its lifecycle side effects.
// Only the assigned worker may call this.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status      string   `json:"status" binding:"required"`
		ActualHours *float64 `json:"actual_hours"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateStatus(actor, taskID, services.StatusChangeInput{
		Status:      models.TaskStatus(req.Status),
		ActualHours: req.ActualHours,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask removes a task. Creator only.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(actor, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AddComment appends a comment to a task and returns the updated task.
func (h *TaskHandler) AddComment(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type AddCommentRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Comment text is required")
		return
	}

	task, err := h.taskService.AddComment(actor, taskID, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// GetStats returns the aggregate counts over the actor's visible task set.
func (h *TaskHandler) GetStats(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stats, err := h.taskService.Stats(actor)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseTaskID(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAssigneeNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskAccessDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNegativeHours),
		errors.Is(err, services.ErrCommentTextRequired),
		errors.Is(err, services.ErrAssigneeNotWorker):
		apierrors.BadRequest(c, err.Error())
	default:
		slog.Error("task handler error", "error", err, "path", c.FullPath())
		apierrors.InternalError(c, "")
	}
}
