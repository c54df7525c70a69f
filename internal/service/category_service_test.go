package service

import (
	"testing"

	"taskboard/internal/httperr"
	"taskboard/internal/repository"
)

func newCategoryService(f *fixture) *CategoryService {
	return NewCategoryService(repository.NewCategoryRepository(f.db))
}

func TestCategoryCreateAssignsPositions(t *testing.T) {
	f := newFixture(t)
	svc := newCategoryService(f)

	work, err := svc.Create(ctx, f.user.ID, CategoryInput{Name: "Work"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	home, err := svc.Create(ctx, f.user.ID, CategoryInput{Name: "Home"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if work.Position <= f.category.Position {
		t.Errorf("work position = %d, want after seeded %d", work.Position, f.category.Position)
	}
	if home.Position != work.Position+1 {
		t.Errorf("home position = %d, want %d", home.Position, work.Position+1)
	}
	if work.Color == "" {
		t.Error("expected a default color")
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	f := newFixture(t)
	svc := newCategoryService(f)
	seedTask(t, f.db, f.user.ID, f.category.ID, "blocker")

	err := svc.Delete(ctx, f.user.ID, f.category.ID)
	if httperr.StatusOf(err) != 409 {
		t.Fatalf("status = %d (%v), want 409", httperr.StatusOf(err), err)
	}

	// Completed tasks still block deletion.
	task := seedTask(t, f.db, f.user.ID, f.category.ID, "done")
	if _, err := f.tasks.ToggleComplete(ctx, f.user.ID, task.ID); err != nil {
		t.Fatalf("toggle complete: %v", err)
	}
	err = svc.Delete(ctx, f.user.ID, f.category.ID)
	if httperr.StatusOf(err) != 409 {
		t.Fatalf("status = %d (%v), want 409", httperr.StatusOf(err), err)
	}
}

func TestCategoryDeleteEmpty(t *testing.T) {
	f := newFixture(t)
	svc := newCategoryService(f)

	if err := svc.Delete(ctx, f.user.ID, f.category.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list, err := svc.List(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("list returned %d categories after delete, want 0", len(list))
	}
}

func TestCategoryNotOwnedIsNotFound(t *testing.T) {
	f := newFixture(t)
	svc := newCategoryService(f)
	stranger := seedUser(t, f.db)

	err := svc.Delete(ctx, stranger.ID, f.category.ID)
	if httperr.StatusOf(err) != 404 {
		t.Fatalf("status = %d (%v), want 404", httperr.StatusOf(err), err)
	}
}

func TestCategoryReorder(t *testing.T) {
	f := newFixture(t)
	svc := newCategoryService(f)

	work, err := svc.Create(ctx, f.user.ID, CategoryInput{Name: "Work"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Reorder(ctx, f.user.ID, []string{work.ID, f.category.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	list, err := svc.List(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != work.ID {
		t.Fatalf("list order wrong, first = %s want %s", list[0].ID, work.ID)
	}
}

func TestCategoryReorderRejectsUnknownIDs(t *testing.T) {
	f := newFixture(t)
	svc := newCategoryService(f)

	err := svc.Reorder(ctx, f.user.ID, []string{f.category.ID, "ghost"})
	if httperr.StatusOf(err) != 400 {
		t.Fatalf("status = %d (%v), want 400", httperr.StatusOf(err), err)
	}
}

func TestCategoryListIncludesTaskCount(t *testing.T) {
	f := newFixture(t)
	svc := newCategoryService(f)
	seedTask(t, f.db, f.user.ID, f.category.ID, "one")
	seedTask(t, f.db, f.user.ID, f.category.ID, "two")

	list, err := svc.List(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list returned %d categories, want 1", len(list))
	}
	if list[0].TaskCount != 2 {
		t.Errorf("taskCount = %d, want 2", list[0].TaskCount)
	}
}
