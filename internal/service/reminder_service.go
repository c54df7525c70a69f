package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

// ReminderService builds the end-of-day summary messages users receive
// through a notification channel.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository
}

func NewReminderService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, userRepo: userRepo}
}

// Notifier delivers a reminder message to a chat.
type Notifier interface {
	Send(chatID int64, text string) error
}

// DueSummary returns the reminder message for a user, or "" when nothing is
// due: no pending EOD tasks today, or a weekend with WeekendEOD disabled.
func (s *ReminderService) DueSummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	local := now.In(user.Location())
	if !user.WeekendEOD && isWeekend(local) {
		return "", nil
	}

	today := startOfDay(local)
	tasks, err := s.taskRepo.ListEODSetBetween(ctx, user.ID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return "", err
	}

	var pending []model.Task
	for _, task := range tasks {
		if !task.Completed {
			pending = append(pending, task)
		}
	}
	if len(pending) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>End of day check-in</b>\n%d task(s) still open today:\n", len(pending))
	for _, task := range pending {
		line := html.EscapeString(task.Title)
		if task.Category != nil {
			line += " — " + html.EscapeString(task.Category.Name)
		}
		b.WriteString("• " + line + "\n")
	}
	return b.String(), nil
}

// Dispatch sends due reminders to every user whose reminder time matches
// the current minute in their timezone.
func (s *ReminderService) Dispatch(ctx context.Context, now time.Time, notifier Notifier) error {
	users, err := s.userRepo.ListWithReminders(ctx)
	if err != nil {
		return err
	}

	for _, user := range users {
		local := now.In(user.Location())
		if local.Format("15:04") != user.EODReminderTime {
			continue
		}
		summary, err := s.DueSummary(ctx, user, now)
		if err != nil {
			return err
		}
		if summary == "" || user.TelegramChatID == nil {
			continue
		}
		if err := notifier.Send(*user.TelegramChatID, summary); err != nil {
			return fmt.Errorf("send reminder to %s: %w", user.ID, err)
		}
	}
	return nil
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
