package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard/internal/model"
)

// StatsRepository runs the aggregate queries behind derived statistics.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) count(ctx context.Context, cond string, args ...interface{}) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where(cond, args...).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

func (r *StatsRepository) CountTasks(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "user_id = ?", userID)
}

func (r *StatsRepository) CountCompleted(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "user_id = ? AND completed = ?", userID, true)
}

func (r *StatsRepository) CountEOD(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "user_id = ? AND is_eod = ?", userID, true)
}

func (r *StatsRepository) CountEODCompleted(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, "user_id = ? AND is_eod = ? AND completed = ?", userID, true, true)
}

// CountEODOverdue counts still-pinned incomplete tasks set before cutoff.
func (r *StatsRepository) CountEODOverdue(ctx context.Context, userID string, cutoff time.Time) (int64, error) {
	return r.count(ctx, "user_id = ? AND is_eod = ? AND completed = ? AND eod_set_at < ?",
		userID, true, false, cutoff)
}

func (r *StatsRepository) CountCategories(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("user_id = ? AND is_archived = ?", userID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}

func (r *StatsRepository) CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	return r.count(ctx, "user_id = ? AND completed_at >= ? AND completed_at < ?", userID, from, to)
}

func (r *StatsRepository) CountEODCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	return r.count(ctx, "user_id = ? AND is_eod = ? AND eod_completed_at >= ? AND eod_completed_at < ?",
		userID, true, from, to)
}

func (r *StatsRepository) CountEODSetBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	return r.count(ctx, "user_id = ? AND is_eod = ? AND eod_set_at >= ? AND eod_set_at < ?",
		userID, true, from, to)
}

func (r *StatsRepository) CountEODSetSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	return r.count(ctx, "user_id = ? AND is_eod = ? AND eod_set_at >= ?", userID, true, since)
}

func (r *StatsRepository) CountEODCompletedSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	return r.count(ctx, "user_id = ? AND is_eod = ? AND completed = ? AND eod_set_at >= ?",
		userID, true, true, since)
}

// ListCompletedEODSince returns completed EOD tasks set since the given
// time, with both timestamps present. Feeds the average-completion-time
// calculation.
func (r *StatsRepository) ListCompletedEODSince(ctx context.Context, userID string, since time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_eod = ? AND completed = ? AND eod_set_at >= ? AND eod_completed_at IS NOT NULL",
			userID, true, true, since).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListEODSince returns every EOD task set since the given time. Feeds the
// streak walk, which buckets by local day in memory.
func (r *StatsRepository) ListEODSince(ctx context.Context, userID string, since time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_eod = ? AND eod_set_at >= ?", userID, true, since).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
