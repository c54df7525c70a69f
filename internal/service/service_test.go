package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := repository.NewDB(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{Email: uuid.NewString() + "@example.com", PasswordHash: "x", Timezone: "UTC"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedCategory(t *testing.T, db *gorm.DB, userID string) *model.Category {
	t.Helper()
	category := &model.Category{UserID: userID, Name: "Inbox", Color: "#6366f1"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return category
}

func seedTask(t *testing.T, db *gorm.DB, userID, categoryID, title string) *model.Task {
	t.Helper()
	task := &model.Task{UserID: userID, CategoryID: categoryID, Title: title, Color: "#ffffff"}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

type fixture struct {
	db       *gorm.DB
	user     *model.User
	category *model.Category
	tasks    *TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	user := seedUser(t, db)
	category := seedCategory(t, db, user.ID)
	svc := NewTaskService(repository.NewTaskRepository(db), repository.NewCategoryRepository(db))
	return &fixture{db: db, user: user, category: category, tasks: svc}
}

func (f *fixture) at(t time.Time) {
	f.tasks.now = func() time.Time { return t }
}

var ctx = context.Background()
