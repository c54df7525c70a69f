package service

import (
	"strings"
	"testing"
	"time"

	"taskboard/internal/repository"
)

type fakeNotifier struct {
	sent map[int64]string
}

func (n *fakeNotifier) Send(chatID int64, text string) error {
	if n.sent == nil {
		n.sent = map[int64]string{}
	}
	n.sent[chatID] = text
	return nil
}

func newReminderFixture(f *fixture) *ReminderService {
	return NewReminderService(repository.NewTaskRepository(f.db), repository.NewUserRepository(f.db))
}

func TestDueSummaryListsPendingTasks(t *testing.T) {
	f := newFixture(t)
	svc := newReminderFixture(f)

	// A Tuesday.
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	open := seedTask(t, f.db, f.user.ID, f.category.ID, "finish review")
	done := seedTask(t, f.db, f.user.ID, f.category.ID, "standup notes")

	f.at(now.Add(-4 * time.Hour))
	for _, id := range []string{open.ID, done.ID} {
		if _, err := f.tasks.ToggleEOD(ctx, f.user.ID, id); err != nil {
			t.Fatalf("toggle eod: %v", err)
		}
	}
	if _, err := f.tasks.ToggleComplete(ctx, f.user.ID, done.ID); err != nil {
		t.Fatalf("toggle complete: %v", err)
	}

	summary, err := svc.DueSummary(ctx, *f.user, now)
	if err != nil {
		t.Fatalf("due summary: %v", err)
	}
	if !strings.Contains(summary, "finish review") {
		t.Errorf("summary %q should list the open task", summary)
	}
	if strings.Contains(summary, "standup notes") {
		t.Errorf("summary %q must not list completed tasks", summary)
	}
}

func TestDueSummaryEmptyWhenNothingPending(t *testing.T) {
	f := newFixture(t)
	svc := newReminderFixture(f)

	summary, err := svc.DueSummary(ctx, *f.user, time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("due summary: %v", err)
	}
	if summary != "" {
		t.Errorf("summary = %q, want empty", summary)
	}
}

func TestDueSummarySkipsWeekendWhenDisabled(t *testing.T) {
	f := newFixture(t)
	svc := newReminderFixture(f)

	// A Saturday.
	now := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	task := seedTask(t, f.db, f.user.ID, f.category.ID, "weekend chores")
	f.at(now.Add(-1 * time.Hour))
	if _, err := f.tasks.ToggleEOD(ctx, f.user.ID, task.ID); err != nil {
		t.Fatalf("toggle eod: %v", err)
	}

	summary, err := svc.DueSummary(ctx, *f.user, now)
	if err != nil {
		t.Fatalf("due summary: %v", err)
	}
	if summary != "" {
		t.Errorf("summary = %q, want empty on a weekend", summary)
	}

	f.user.WeekendEOD = true
	if err := f.db.Save(f.user).Error; err != nil {
		t.Fatalf("save user: %v", err)
	}
	summary, err = svc.DueSummary(ctx, *f.user, now)
	if err != nil {
		t.Fatalf("due summary: %v", err)
	}
	if summary == "" {
		t.Error("weekend reminders enabled, expected a summary")
	}
}

func TestDispatchMatchesReminderMinute(t *testing.T) {
	f := newFixture(t)
	svc := newReminderFixture(f)

	chatID := int64(42)
	f.user.EODReminderTime = "19:00"
	f.user.TelegramChatID = &chatID
	if err := f.db.Save(f.user).Error; err != nil {
		t.Fatalf("save user: %v", err)
	}

	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	task := seedTask(t, f.db, f.user.ID, f.category.ID, "wrap up")
	f.at(now.Add(-1 * time.Hour))
	if _, err := f.tasks.ToggleEOD(ctx, f.user.ID, task.ID); err != nil {
		t.Fatalf("toggle eod: %v", err)
	}

	notifier := &fakeNotifier{}
	if err := svc.Dispatch(ctx, now.Add(30*time.Minute), notifier); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("sent outside the reminder minute: %v", notifier.sent)
	}

	if err := svc.Dispatch(ctx, now, notifier); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !strings.Contains(notifier.sent[chatID], "wrap up") {
		t.Errorf("message = %q, want the open task listed", notifier.sent[chatID])
	}
}
