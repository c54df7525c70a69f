package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// CategoryRepository manages task categories.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// ListByUser returns unarchived categories in display order, each with its
// open tasks preloaded and an open-task count.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID string) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Order("position ASC").
		Preload("Tasks", "completed = ?", false).
		Find(&categories).Error; err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].TaskCount = int64(len(categories[i].Tasks))
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, userID, id string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID, id string) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&model.Category{}).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// TaskCount counts tasks in the category regardless of completion status.
func (r *CategoryRepository) TaskCount(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count category tasks: %w", err)
	}
	return count, nil
}

// NextPosition returns the position a newly created category should take.
func (r *CategoryRepository) NextPosition(ctx context.Context, userID string) (int, error) {
	var last model.Category
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position DESC").
		First(&last).Error
	switch {
	case err == nil:
		return last.Position + 1, nil
	case err == gorm.ErrRecordNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("find last category: %w", err)
	}
}

func (r *CategoryRepository) FindAllByIDs(ctx context.Context, userID string, ids []string) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Reorder rewrites positions to the index of each id in the given order.
// Runs in a single transaction so a failure leaves positions untouched.
func (r *CategoryRepository) Reorder(ctx context.Context, ids []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(&model.Category{}).Where("id = ?", id).
				Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reorder categories: %w", err)
	}
	return nil
}
