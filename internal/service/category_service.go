package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskboard/internal/httperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// CategoryInput represents data required to create a category.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
}

// CategoryUpdate carries a partial update; nil fields are left untouched.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsArchived  *bool
}

// CategoryService provides business logic around categories, including the
// non-empty deletion guard and reordering.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create appends the category at the end of the user's display order.
func (s *CategoryService) Create(ctx context.Context, userID string, input CategoryInput) (*model.Category, error) {
	position, err := s.repo.NextPosition(ctx, userID)
	if err != nil {
		return nil, err
	}

	category := model.Category{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		Icon:        input.Icon,
		Position:    position,
	}
	if category.Color == "" {
		category.Color = "#6366f1"
	}

	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, userID, id string, update CategoryUpdate) (*model.Category, error) {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Icon != nil {
		updates["icon"] = *update.Icon
	}
	if update.IsArchived != nil {
		updates["is_archived"] = *update.IsArchived
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.findOwned(ctx, userID, id)
}

// Delete removes an empty category. A category with tasks, completed or
// not, is never deleted; the caller must move or delete its tasks first.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}

	count, err := s.repo.TaskCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return httperr.Conflict("Cannot delete category with existing tasks")
	}

	return s.repo.Delete(ctx, userID, id)
}

// Reorder rewrites positions to match the requested order, all-or-nothing.
func (s *CategoryService) Reorder(ctx context.Context, userID string, categoryIDs []string) error {
	categories, err := s.repo.FindAllByIDs(ctx, userID, categoryIDs)
	if err != nil {
		return err
	}
	if len(categories) != len(categoryIDs) {
		found := make(map[string]bool, len(categories))
		for _, category := range categories {
			found[category.ID] = true
		}
		return httperr.Invalid(fmt.Sprintf("Invalid category IDs: %v", missingIDs(categoryIDs, found)))
	}
	return s.repo.Reorder(ctx, categoryIDs)
}

func (s *CategoryService) findOwned(ctx context.Context, userID, id string) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Category not found")
		}
		return nil, err
	}
	return category, nil
}
