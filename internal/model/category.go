package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups a user's tasks. Position is a dense 0..N-1 index rewritten
// on every reorder. A category with tasks cannot be deleted.
type Category struct {
	ID          string `gorm:"primaryKey" json:"id"`
	UserID      string `gorm:"index" json:"userId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `gorm:"default:#6366f1" json:"color"`
	Icon        string `json:"icon,omitempty"`
	Position    int    `gorm:"default:0" json:"position"`
	IsArchived  bool   `gorm:"default:false" json:"isArchived"`
	Tasks       []Task `gorm:"foreignKey:CategoryID" json:"tasks,omitempty"`
	// TaskCount is filled by queries, not stored.
	TaskCount int64     `gorm:"-" json:"taskCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
