package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// ValidStatus reports whether the given string is a known task status.
func ValidStatus(status string) bool {
	switch TaskStatus(status) {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// ValidPriority reports whether the given string is a known task priority.
func ValidPriority(priority string) bool {
	switch TaskPriority(priority) {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

type Task struct {
	ID             uint64       `gorm:"primarykey" json:"id"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Status         TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Priority       TaskPriority `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	AssignedToID   *uint64      `gorm:"index" json:"assigned_to_id"`
	CreatedByID    uint64       `gorm:"not null;index" json:"created_by_id"`
	DueDate        *time.Time   `gorm:"index" json:"due_date"`
	StartDate      *time.Time   `json:"start_date"`
	CompletedDate  *time.Time   `json:"completed_date"`
	EstimatedHours float64      `gorm:"not null;default:0" json:"estimated_hours"`
	ActualHours    float64      `gorm:"not null;default:0" json:"actual_hours"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	// Relations
	AssignedTo *User         `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedBy  User          `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Comments   []TaskComment `gorm:"foreignKey:TaskID" json:"comments,omitempty"`
}
