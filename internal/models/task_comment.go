package models

import (
	"time"
)

// TaskComment is an append-only comment on a task. UserName is a snapshot of the
// author's name at the time of writing and is never updated afterwards.
type TaskComment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	UserID    uint64    `gorm:"not null" json:"user_id"`
	UserName  string    `gorm:"type:varchar(255);not null" json:"user_name"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}
