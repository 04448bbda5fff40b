package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ksuzuki/task-tracker-api/internal/dto"
	apierrors "github.com/ksuzuki/task-tracker-api/internal/errors"
	"github.com/ksuzuki/task-tracker-api/internal/middleware"
	"github.com/ksuzuki/task-tracker-api/internal/policy"
	"github.com/ksuzuki/task-tracker-api/internal/repository"
)

// UserHandler serves the user directory endpoints.
type UserHandler struct {
	userRepo repository.UserRepository
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userRepo repository.UserRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
	}
}

// ListWorkers returns all workers sorted by name, for task assignment.
// Manager only.
func (h *UserHandler) ListWorkers(c *gin.Context) {
	actor, exists := middleware.GetIdentity(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if !policy.CanListWorkers(actor) {
		apierrors.Forbidden(c, "Manager role required")
		return
	}

	workers, err := h.userRepo.ListWorkers()
	if err != nil {
		slog.Error("failed to list workers", "error", err)
		apierrors.InternalError(c, "")
		return
	}

	result := make([]dto.UserDTO, len(workers))
	for i, worker := range workers {
		result[i] = dto.ToUserDTO(worker)
	}

	c.JSON(http.StatusOK, gin.H{"workers": result})
}
