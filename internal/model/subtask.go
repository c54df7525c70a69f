package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subtask is a checklist item inside a task, manually ordered by Position.
type Subtask struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	TaskID    string    `gorm:"index" json:"taskId"`
	Title     string    `json:"title"`
	Completed bool      `gorm:"default:false" json:"completed"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Subtask) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
