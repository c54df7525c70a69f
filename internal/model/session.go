package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session ties a user to a refresh token. Rows are rotated on refresh and
// removed on logout or by the expiry sweep.
type Session struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"index" json:"userId"`
	Token            string    `json:"-"`
	RefreshToken     string    `gorm:"uniqueIndex" json:"-"`
	ExpiresAt        time.Time `json:"expiresAt"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
