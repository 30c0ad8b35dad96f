package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"agency-budget-go/internal/domain/project"
)

func TestProjectRepositoryCRUD(t *testing.T) {
	repo := NewProjectRepository()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, project.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}

	p := project.New("p1")
	p.Name = "First"
	p.CreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.Upsert(ctx, &p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "First" {
		t.Fatalf("name: got %q", got.Name)
	}

	// Mutating the returned snapshot must not leak into the store.
	got.Name = "mutated"
	again, err := repo.GetByID(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Name != "First" {
		t.Fatal("store leaked a mutable reference")
	}

	deleted, err := repo.Delete(ctx, "p1")
	if err != nil || !deleted {
		t.Fatalf("delete: %v deleted=%v", err, deleted)
	}
	deleted, err = repo.Delete(ctx, "p1")
	if err != nil || deleted {
		t.Fatalf("second delete: %v deleted=%v", err, deleted)
	}
}

func TestProjectRepositoryListNewestFirst(t *testing.T) {
	repo := NewProjectRepository()
	ctx := context.Background()

	old := project.New("old")
	old.CreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	recent := project.New("recent")
	recent.CreatedAt = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	for _, p := range []project.Project{old, recent} {
		p := p
		if err := repo.Upsert(ctx, &p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	items, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(items))
	}
	if items[0].ID != "recent" || items[1].ID != "old" {
		t.Fatalf("unexpected order: %s, %s", items[0].ID, items[1].ID)
	}
}
