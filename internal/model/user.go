package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns categories and tasks. EODReminderTime ("HH:MM", empty disables)
// and WeekendEOD control when the daily EOD summary is delivered.
type User struct {
	ID              string `gorm:"primaryKey" json:"id"`
	Email           string `gorm:"uniqueIndex" json:"email"`
	PasswordHash    string `json:"-"`
	Name            string `json:"name,omitempty"`
	Timezone        string `gorm:"default:UTC" json:"timezone"`
	EODReminderTime string `gorm:"column:eod_reminder_time" json:"eodReminderTime,omitempty"`
	WeekendEOD      bool   `gorm:"column:weekend_eod;default:false" json:"weekendEOD"`
	// TelegramChatID links the user to a Telegram chat for reminder delivery.
	TelegramChatID *int64     `json:"telegramChatId,omitempty"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Location resolves the user's timezone, falling back to UTC.
func (u *User) Location() *time.Location {
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
