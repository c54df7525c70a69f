package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// taskOrder sorts EOD tasks first (earlier pins first), then manual
// priority, then creation time.
const taskOrder = "is_eod DESC, eod_set_at ASC, priority ASC, created_at ASC"

// TaskFilter narrows task listings. Nil pointer fields are ignored.
type TaskFilter struct {
	CategoryID string
	IsEOD      *bool
	Completed  *bool
}

// TaskRepository handles CRUD for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, userID string, filter TaskFilter) ([]model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.IsEOD != nil {
		q = q.Where("is_eod = ?", *filter.IsEOD)
	}
	if filter.Completed != nil {
		q = q.Where("completed = ?", *filter.Completed)
	}

	var tasks []model.Task
	if err := q.Order(taskOrder).
		Preload("Category").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, taskID).
		Preload("Category").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Attachments").
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, taskID string, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindAllByIDs(ctx context.Context, userID string, ids []string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Reorder sets each task's priority to its index in ids, keeping the EOD pin
// for flagged tasks, and optionally moves every task to categoryID. Runs in
// a single transaction so a failure leaves no partial renumbering behind.
func (r *TaskRepository) Reorder(ctx context.Context, ids []string, pinned map[string]bool, categoryID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			updates := map[string]interface{}{"priority": i}
			if pinned[id] {
				updates["priority"] = model.EODPinnedPriority
			}
			if categoryID != "" {
				updates["category_id"] = categoryID
			}
			if err := tx.Model(&model.Task{}).Where("id = ?", id).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder tasks: %w", err)
	}
	return nil
}

// ListEODSetBetween returns EOD tasks whose pin was set in [from, to).
func (r *TaskRepository) ListEODSetBetween(ctx context.Context, userID string, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_eod = ? AND eod_set_at >= ? AND eod_set_at < ?", userID, true, from, to).
		Order("eod_set_at ASC").
		Preload("Category").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ClearOverdueEOD force-resets incomplete EOD tasks whose pin predates
// cutoff and reports how many rows changed.
func (r *TaskRepository) ClearOverdueEOD(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND is_eod = ? AND completed = ? AND eod_set_at < ?", userID, true, false, cutoff).
		Updates(map[string]interface{}{
			"is_eod":     false,
			"eod_set_at": nil,
			"priority":   0,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("clear overdue eod: %w", result.Error)
	}
	return result.RowsAffected, nil
}
