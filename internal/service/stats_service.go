package service

import (
	"context"
	"math"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// streakWalkLimit bounds the backward streak walk. It caps days examined,
// not just the streak itself, so an empty history terminates.
const streakWalkLimit = 365

type TaskSummary struct {
	TotalTasks      int64   `json:"totalTasks"`
	CompletedTasks  int64   `json:"completedTasks"`
	PendingTasks    int64   `json:"pendingTasks"`
	CompletionRate  float64 `json:"completionRate"`
	CategoriesCount int64   `json:"categoriesCount"`
}

type EODSummary struct {
	TotalEOD          int64   `json:"totalEOD"`
	CompletedEOD      int64   `json:"completedEOD"`
	PendingEOD        int64   `json:"pendingEOD"`
	OverdueEOD        int64   `json:"overdueEOD"`
	EODCompletionRate float64 `json:"eodCompletionRate"`
}

type SummaryResult struct {
	Summary TaskSummary `json:"summary"`
	EOD     EODSummary  `json:"eod"`
}

type DailyStat struct {
	Date              string  `json:"date"`
	Completed         int64   `json:"completed"`
	EODCompleted      int64   `json:"eodCompleted"`
	EODSet            int64   `json:"eodSet"`
	EODCompletionRate float64 `json:"eodCompletionRate"`
}

type WeeklyStat struct {
	WeekStart         string  `json:"weekStart"`
	WeekEnd           string  `json:"weekEnd"`
	Completed         int64   `json:"completed"`
	EODCompleted      int64   `json:"eodCompleted"`
	EODSet            int64   `json:"eodSet"`
	EODCompletionRate float64 `json:"eodCompletionRate"`
}

type MonthlyStat struct {
	Month             string  `json:"month"`
	Completed         int64   `json:"completed"`
	EODCompleted      int64   `json:"eodCompleted"`
	EODSet            int64   `json:"eodSet"`
	EODCompletionRate float64 `json:"eodCompletionRate"`
}

type EODDetailedStats struct {
	TotalEOD       int64   `json:"totalEOD"`
	CompletedEOD   int64   `json:"completedEOD"`
	PendingEOD     int64   `json:"pendingEOD"`
	CompletionRate float64 `json:"completionRate"`
	// AverageCompletionTimeMinutes is absent when no EOD task was
	// completed in range.
	AverageCompletionTimeMinutes *int64    `json:"averageCompletionTimeMinutes,omitempty"`
	StreakDays                   int       `json:"streakDays"`
	Range                        string    `json:"range"`
	PeriodStart                  time.Time `json:"periodStart"`
	PeriodEnd                    time.Time `json:"periodEnd"`
}

// StatsService derives statistics from stored task timestamps.
type StatsService struct {
	repo *repository.StatsRepository
	now  func() time.Time
}

func NewStatsService(repo *repository.StatsRepository) *StatsService {
	return &StatsService{repo: repo, now: time.Now}
}

func (s *StatsService) Summary(ctx context.Context, userID string) (*SummaryResult, error) {
	total, err := s.repo.CountTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	eodTotal, err := s.repo.CountEOD(ctx, userID)
	if err != nil {
		return nil, err
	}
	eodCompleted, err := s.repo.CountEODCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	eodOverdue, err := s.repo.CountEODOverdue(ctx, userID, startOfDay(s.now()))
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.CountCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &SummaryResult{
		Summary: TaskSummary{
			TotalTasks:      total,
			CompletedTasks:  completed,
			PendingTasks:    total - completed,
			CompletionRate:  completionRate(completed, total),
			CategoriesCount: categories,
		},
		EOD: EODSummary{
			TotalEOD:          eodTotal,
			CompletedEOD:      eodCompleted,
			PendingEOD:        eodTotal - eodCompleted,
			OverdueEOD:        eodOverdue,
			EODCompletionRate: completionRate(eodCompleted, eodTotal),
		},
	}, nil
}

// Daily reports per-day buckets for the trailing days, oldest first.
func (s *StatsService) Daily(ctx context.Context, userID string, days int) ([]DailyStat, error) {
	today := startOfDay(s.now())
	stats := make([]DailyStat, 0, days)

	for i := days - 1; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		to := from.AddDate(0, 0, 1)
		completed, eodCompleted, eodSet, err := s.bucketCounts(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		stats = append(stats, DailyStat{
			Date:              from.Format("2006-01-02"),
			Completed:         completed,
			EODCompleted:      eodCompleted,
			EODSet:            eodSet,
			EODCompletionRate: completionRate(eodCompleted, eodSet),
		})
	}
	return stats, nil
}

// Weekly reports trailing 7-day windows ending today, oldest first.
func (s *StatsService) Weekly(ctx context.Context, userID string, weeks int) ([]WeeklyStat, error) {
	today := startOfDay(s.now())
	stats := make([]WeeklyStat, 0, weeks)

	for i := weeks - 1; i >= 0; i-- {
		end := today.AddDate(0, 0, -7*i)
		from := end.AddDate(0, 0, -6)
		to := end.AddDate(0, 0, 1)
		completed, eodCompleted, eodSet, err := s.bucketCounts(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		stats = append(stats, WeeklyStat{
			WeekStart:         from.Format("2006-01-02"),
			WeekEnd:           end.Format("2006-01-02"),
			Completed:         completed,
			EODCompleted:      eodCompleted,
			EODSet:            eodSet,
			EODCompletionRate: completionRate(eodCompleted, eodSet),
		})
	}
	return stats, nil
}

// Monthly reports calendar-month buckets, oldest first.
func (s *StatsService) Monthly(ctx context.Context, userID string, months int) ([]MonthlyStat, error) {
	now := s.now()
	stats := make([]MonthlyStat, 0, months)

	for i := months - 1; i >= 0; i-- {
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)
		completed, eodCompleted, eodSet, err := s.bucketCounts(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		stats = append(stats, MonthlyStat{
			Month:             from.Format("2006-01"),
			Completed:         completed,
			EODCompleted:      eodCompleted,
			EODSet:            eodSet,
			EODCompletionRate: completionRate(eodCompleted, eodSet),
		})
	}
	return stats, nil
}

// EOD reports detailed EOD statistics for a named trailing range
// (day, week, month or year).
func (s *StatsService) EOD(ctx context.Context, userID, rangeName string) (*EODDetailedStats, error) {
	now := s.now()
	var start time.Time
	switch rangeName {
	case "day":
		start = startOfDay(now)
	case "month":
		start = now.AddDate(0, -1, 0)
	case "year":
		start = now.AddDate(-1, 0, 0)
	default:
		rangeName = "week"
		start = now.AddDate(0, 0, -7)
	}

	total, err := s.repo.CountEODSetSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	completed, err := s.repo.CountEODCompletedSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	completedTasks, err := s.repo.ListCompletedEODSince(ctx, userID, start)
	if err != nil {
		return nil, err
	}
	streakTasks, err := s.repo.ListEODSince(ctx, userID, startOfDay(now).AddDate(0, 0, -streakWalkLimit))
	if err != nil {
		return nil, err
	}

	return &EODDetailedStats{
		TotalEOD:                     total,
		CompletedEOD:                 completed,
		PendingEOD:                   total - completed,
		CompletionRate:               completionRate(completed, total),
		AverageCompletionTimeMinutes: averageCompletionMinutes(completedTasks),
		StreakDays:                   eodStreak(streakTasks, now),
		Range:                        rangeName,
		PeriodStart:                  start,
		PeriodEnd:                    now,
	}, nil
}

func (s *StatsService) bucketCounts(ctx context.Context, userID string, from, to time.Time) (completed, eodCompleted, eodSet int64, err error) {
	completed, err = s.repo.CountCompletedBetween(ctx, userID, from, to)
	if err != nil {
		return
	}
	eodCompleted, err = s.repo.CountEODCompletedBetween(ctx, userID, from, to)
	if err != nil {
		return
	}
	eodSet, err = s.repo.CountEODSetBetween(ctx, userID, from, to)
	return
}

// averageCompletionMinutes is the mean pin-to-completion time in whole
// minutes, nil when no task qualifies.
func averageCompletionMinutes(tasks []model.Task) *int64 {
	var total float64
	var count int64
	for _, task := range tasks {
		if task.EODSetAt == nil || task.EODCompletedAt == nil {
			continue
		}
		total += task.EODCompletedAt.Sub(*task.EODSetAt).Minutes()
		count++
	}
	if count == 0 {
		return nil
	}
	avg := int64(math.Round(total / float64(count)))
	return &avg
}

// eodStreak counts consecutive fully-completed EOD days walking backward
// from today. Days with no EOD tasks are skipped without breaking the
// streak; the walk stops at the first day with an incomplete EOD task or
// after streakWalkLimit days.
func eodStreak(tasks []model.Task, now time.Time) int {
	type dayBucket struct{ total, done int }
	byDay := make(map[string]*dayBucket)
	for _, task := range tasks {
		if task.EODSetAt == nil {
			continue
		}
		key := task.EODSetAt.In(now.Location()).Format("2006-01-02")
		bucket := byDay[key]
		if bucket == nil {
			bucket = &dayBucket{}
			byDay[key] = bucket
		}
		bucket.total++
		if task.Completed {
			bucket.done++
		}
	}

	streak := 0
	day := startOfDay(now)
	for i := 0; i < streakWalkLimit; i++ {
		if bucket := byDay[day.Format("2006-01-02")]; bucket != nil {
			if bucket.done < bucket.total {
				break
			}
			streak++
		}
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
