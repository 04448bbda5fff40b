package services

import (
	"time"

	"github.com/ksuzuki/task-tracker-api/internal/models"
)

// StatusChangeInput carries a requested status transition. ActualHours is
// optional; when present it is written verbatim.
type StatusChangeInput struct {
	Status      models.TaskStatus
	ActualHours *float64
}

// statusUpdateColumns computes the column writes for a status transition.
// Entering in-progress sets start_date only while it is unset; entering
// completed sets completed_date only while it is unset. Re-entering either
// state later leaves the recorded date alone. The status value itself is
// written verbatim with no ordering constraint between states.
//
// These side effects fire only on the status-update operation; the full-field
// update can overwrite status but never writes the recorded dates.
func statusUpdateColumns(task *models.Task, input StatusChangeInput, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"status": input.Status,
	}

	if input.Status == models.TaskStatusInProgress && task.StartDate == nil {
		updates["start_date"] = now
	}
	if input.Status == models.TaskStatusCompleted && task.CompletedDate == nil {
		updates["completed_date"] = now
	}
	if input.ActualHours != nil {
		updates["actual_hours"] = *input.ActualHours
	}

	return updates
}
