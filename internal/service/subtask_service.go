package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"taskboard/internal/httperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// SubtaskUpdate carries a partial update; nil fields are left untouched.
type SubtaskUpdate struct {
	Title     *string
	Completed *bool
	Position  *int
}

// SubtaskService manages checklist items under a task.
type SubtaskService struct {
	subtaskRepo *repository.SubtaskRepository
	taskRepo    *repository.TaskRepository
}

func NewSubtaskService(subtaskRepo *repository.SubtaskRepository, taskRepo *repository.TaskRepository) *SubtaskService {
	return &SubtaskService{subtaskRepo: subtaskRepo, taskRepo: taskRepo}
}

// Create appends a subtask at the end of the task's checklist.
func (s *SubtaskService) Create(ctx context.Context, userID, taskID, title string) (*model.Subtask, error) {
	if _, err := s.taskRepo.FindByID(ctx, userID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Task not found")
		}
		return nil, err
	}

	position, err := s.subtaskRepo.NextPosition(ctx, taskID)
	if err != nil {
		return nil, err
	}

	subtask := model.Subtask{TaskID: taskID, Title: title, Position: position}
	if err := s.subtaskRepo.Create(ctx, &subtask); err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (s *SubtaskService) Update(ctx context.Context, userID, id string, update SubtaskUpdate) (*model.Subtask, error) {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Completed != nil {
		updates["completed"] = *update.Completed
	}
	if update.Position != nil {
		updates["position"] = *update.Position
	}

	if len(updates) > 0 {
		if err := s.subtaskRepo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	return s.findOwned(ctx, userID, id)
}

func (s *SubtaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.findOwned(ctx, userID, id); err != nil {
		return err
	}
	return s.subtaskRepo.Delete(ctx, id)
}

func (s *SubtaskService) findOwned(ctx context.Context, userID, id string) (*model.Subtask, error) {
	subtask, err := s.subtaskRepo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Subtask not found")
		}
		return nil, err
	}
	return subtask, nil
}
