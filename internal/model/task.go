package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EODPinnedPriority is forced onto a task's priority while its EOD flag is
// set, pinning it above every manually ordered task in its category.
const EODPinnedPriority = 999

// Task is a single item in the planner. The EOD fields move together:
// IsEOD implies EODSetAt is set and Priority is pinned; dropping the flag
// clears both timestamps and resets the priority.
type Task struct {
	ID             string       `gorm:"primaryKey" json:"id"`
	UserID         string       `gorm:"index" json:"userId"`
	CategoryID     string       `gorm:"index" json:"categoryId"`
	Title          string       `json:"title"`
	Description    string       `json:"description,omitempty"`
	Priority       int          `gorm:"default:0" json:"priority"`
	Color          string       `gorm:"default:#ffffff" json:"color"`
	Completed      bool         `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time   `json:"completedAt,omitempty"`
	IsEOD          bool         `gorm:"column:is_eod;default:false" json:"isEOD"`
	EODSetAt       *time.Time   `gorm:"column:eod_set_at" json:"eodSetAt,omitempty"`
	EODCompletedAt *time.Time   `gorm:"column:eod_completed_at" json:"eodCompletedAt,omitempty"`
	DueDate        *time.Time   `json:"dueDate,omitempty"`
	Notes          string       `json:"notes,omitempty"`
	Category       *Category    `json:"category,omitempty"`
	Subtasks       []Subtask    `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
	Attachments    []Attachment `gorm:"foreignKey:TaskID" json:"attachments,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
