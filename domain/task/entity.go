package task

import (
	"time"
)

// Task represents a to-do item. Every task belongs to exactly one user
// for its entire lifetime; UserID is set at creation and never updated.
type Task struct {
	ID          uint    `gorm:"primarykey"`
	Title       string  `gorm:"size:200;not null"`
	Description *string `gorm:"size:2000"`
	Completed   bool    `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UserID      string `gorm:"index;not null;type:text"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}
