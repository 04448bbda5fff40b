package models

import (
	"time"
)

type UserRole string

const (
	RoleManager UserRole = "manager"
	RoleWorker  UserRole = "worker"
)

// ValidRole reports whether the given string is a known user role.
func ValidRole(role string) bool {
	switch UserRole(role) {
	case RoleManager, RoleWorker:
		return true
	}
	return false
}

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	Department   string    `gorm:"type:varchar(255)" json:"department"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	CreatedTasks  []Task `gorm:"foreignKey:CreatedByID" json:"-"`
	AssignedTasks []Task `gorm:"foreignKey:AssignedToID" json:"-"`
}
