package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// SessionRepository manages refresh-token sessions.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	var session model.Session
	if err := r.db.WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Rotate swaps the session's tokens and pushes out both expiries.
func (r *SessionRepository) Rotate(ctx context.Context, id, token, refreshToken string, expiresAt, refreshExpiresAt time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Session{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"token":              token,
			"refresh_token":      refreshToken,
			"expires_at":         expiresAt,
			"refresh_expires_at": refreshExpiresAt,
		}).Error; err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	if err := r.db.WithContext(ctx).
		Where("refresh_token = ?", refreshToken).
		Delete(&model.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired sweeps sessions whose refresh window has closed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("refresh_expires_at < ?", now).
		Delete(&model.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
