package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/httperr"
	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	CategoryID  string
	Priority    int
	Color       string
	DueDate     *time.Time
	Notes       string
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *int
	Color       *string
	Completed   *bool
	IsEOD       *bool
	DueDate     *time.Time
	Notes       *string
}

// EODTodayResult bundles today's EOD tasks with their completion stats.
type EODTodayResult struct {
	Tasks []model.Task  `json:"tasks"`
	Stats EODTodayStats `json:"stats"`
}

type EODTodayStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completionRate"`
}

// TaskService wraps task-related business logic, including the EOD toggle
// state machine and reordering.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	now          func() time.Time
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo, now: time.Now}
}

func (s *TaskService) List(ctx context.Context, userID string, filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskRepo.List(ctx, userID, filter)
}

func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*model.Task, error) {
	return s.findOwned(ctx, userID, taskID)
}

func (s *TaskService) Create(ctx context.Context, userID string, input TaskInput) (*model.Task, error) {
	if _, err := s.categoryRepo.FindByID(ctx, userID, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Category not found")
		}
		return nil, err
	}

	task := model.Task{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Color:       input.Color,
		DueDate:     input.DueDate,
		Notes:       input.Notes,
	}
	if task.Color == "" {
		task.Color = "#ffffff"
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(ctx, userID, task.ID)
}

// Update applies a partial update, stamping or clearing the completion and
// EOD timestamps when those flags flip.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, update TaskUpdate) (*model.Task, error) {
	task, err := s.findOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Color != nil {
		updates["color"] = *update.Color
	}
	if update.Notes != nil {
		updates["notes"] = *update.Notes
	}
	if update.DueDate != nil {
		updates["due_date"] = *update.DueDate
	}
	if update.Priority != nil {
		updates["priority"] = *update.Priority
	}

	if update.Completed != nil {
		switch {
		case *update.Completed && !task.Completed:
			now := s.now()
			updates["completed"] = true
			updates["completed_at"] = now
			if task.IsEOD {
				updates["eod_completed_at"] = now
			}
		case !*update.Completed && task.Completed:
			updates["completed"] = false
			updates["completed_at"] = nil
			updates["eod_completed_at"] = nil
		}
	}

	if update.IsEOD != nil {
		switch {
		case *update.IsEOD && !task.IsEOD:
			updates["is_eod"] = true
			updates["eod_set_at"] = s.now()
			updates["priority"] = model.EODPinnedPriority
		case !*update.IsEOD && task.IsEOD:
			updates["is_eod"] = false
			updates["eod_set_at"] = nil
			updates["eod_completed_at"] = nil
			if update.Priority == nil {
				updates["priority"] = 0
			}
		}
	}

	if len(updates) > 0 {
		if err := s.taskRepo.Update(ctx, taskID, updates); err != nil {
			return nil, err
		}
	}
	return s.taskRepo.FindByID(ctx, userID, taskID)
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.findOwned(ctx, userID, taskID); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, userID, taskID)
}

// ToggleComplete flips the completion flag. Completing stamps CompletedAt,
// and EODCompletedAt too while the task is pinned; un-completing clears both.
func (s *TaskService) ToggleComplete(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.findOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	completed := !task.Completed
	updates := map[string]interface{}{"completed": completed}
	if completed {
		now := s.now()
		updates["completed_at"] = now
		if task.IsEOD {
			updates["eod_completed_at"] = now
		}
	} else {
		updates["completed_at"] = nil
		updates["eod_completed_at"] = nil
	}

	if err := s.taskRepo.Update(ctx, taskID, updates); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(ctx, userID, taskID)
}

// ToggleEOD flips the EOD pin. Pinning stamps EODSetAt and forces the pin
// priority; unpinning discards both EOD timestamps and resets priority to 0.
func (s *TaskService) ToggleEOD(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.findOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	isEOD := !task.IsEOD
	updates := map[string]interface{}{"is_eod": isEOD}
	if isEOD {
		updates["eod_set_at"] = s.now()
		updates["priority"] = model.EODPinnedPriority
	} else {
		updates["eod_set_at"] = nil
		updates["eod_completed_at"] = nil
		updates["priority"] = 0
	}

	if err := s.taskRepo.Update(ctx, taskID, updates); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(ctx, userID, taskID)
}

// Reorder rewrites priorities to match the requested order, all-or-nothing.
// EOD tasks keep their pin regardless of requested index. A non-empty
// categoryID moves every listed task there; this is the only operation that
// can move tasks between categories.
func (s *TaskService) Reorder(ctx context.Context, userID string, taskIDs []string, categoryID string) error {
	tasks, err := s.taskRepo.FindAllByIDs(ctx, userID, taskIDs)
	if err != nil {
		return err
	}
	if len(tasks) != len(taskIDs) {
		return httperr.Invalid(fmt.Sprintf("Invalid task IDs: %v", missingIDs(taskIDs, taskKeys(tasks))))
	}

	if categoryID != "" {
		if _, err := s.categoryRepo.FindByID(ctx, userID, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.NotFound("Category not found")
			}
			return err
		}
	}

	pinned := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		if task.IsEOD {
			pinned[task.ID] = true
		}
	}
	return s.taskRepo.Reorder(ctx, taskIDs, pinned, categoryID)
}

// EODToday returns tasks pinned today (local day boundaries) with stats.
func (s *TaskService) EODToday(ctx context.Context, userID string) (*EODTodayResult, error) {
	today := startOfDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)

	tasks, err := s.taskRepo.ListEODSetBetween(ctx, userID, today, tomorrow)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, task := range tasks {
		if task.Completed {
			completed++
		}
	}

	total := len(tasks)
	return &EODTodayResult{
		Tasks: tasks,
		Stats: EODTodayStats{
			Total:          total,
			Completed:      completed,
			Pending:        total - completed,
			CompletionRate: completionRate(int64(completed), int64(total)),
		},
	}, nil
}

// ClearOverdueEOD force-unpins incomplete EOD tasks set before today's local
// midnight and reports how many were cleared.
func (s *TaskService) ClearOverdueEOD(ctx context.Context, userID string) (int64, error) {
	return s.taskRepo.ClearOverdueEOD(ctx, userID, startOfDay(s.now()))
}

func (s *TaskService) findOwned(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Task not found")
		}
		return nil, err
	}
	return task, nil
}

func taskKeys(tasks []model.Task) map[string]bool {
	keys := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		keys[task.ID] = true
	}
	return keys
}

func missingIDs(requested []string, found map[string]bool) []string {
	var missing []string
	for _, id := range requested {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
