package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// SubtaskRepository manages checklist items. Ownership checks go through
// the parent task, so every method is scoped by user id.
type SubtaskRepository struct {
	db *gorm.DB
}

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	if err := r.db.WithContext(ctx).Create(subtask).Error; err != nil {
		return fmt.Errorf("create subtask: %w", err)
	}
	return nil
}

// FindByID resolves a subtask only when its parent task belongs to userID.
func (r *SubtaskRepository) FindByID(ctx context.Context, userID, id string) (*model.Subtask, error) {
	var subtask model.Subtask
	if err := r.db.WithContext(ctx).
		Joins("JOIN tasks ON tasks.id = subtasks.task_id").
		Where("subtasks.id = ? AND tasks.user_id = ?", id, userID).
		First(&subtask).Error; err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *SubtaskRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&model.Subtask{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update subtask: %w", err)
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).
		Delete(&model.Subtask{}).Error; err != nil {
		return fmt.Errorf("delete subtask: %w", err)
	}
	return nil
}

// NextPosition returns the position a new subtask should take within a task.
func (r *SubtaskRepository) NextPosition(ctx context.Context, taskID string) (int, error) {
	var last model.Subtask
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("position DESC").
		First(&last).Error
	switch {
	case err == nil:
		return last.Position + 1, nil
	case err == gorm.ErrRecordNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("find last subtask: %w", err)
	}
}
