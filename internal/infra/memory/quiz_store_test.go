package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"brainscore-quiz-service/internal/domain"
)

func TestQuizStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.clock = func() time.Time { return now }

	first, err := store.Create(ctx, sampleInput("first"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	now = now.Add(time.Minute)
	second, err := store.Create(ctx, sampleInput("second"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := store.Create(ctx, sampleInput("first")); !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected slug taken, got %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	in := sampleInput("renamed")
	updated, err := store.Update(ctx, first.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "renamed" || !updated.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if _, err := store.GetBySlug(ctx, "first"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected old slug to be released, got %v", err)
	}
	if _, err := store.Update(ctx, first.ID, sampleInput("second")); !errors.Is(err, domain.ErrSlugTaken) {
		t.Fatalf("expected slug taken on update, got %v", err)
	}

	if err := store.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, second.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected deleted quiz gone, got %v", err)
	}
	if err := store.Delete(ctx, second.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestQuizStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	created, err := store.Create(ctx, sampleInput("copies"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created.Questions[0].Options[0] = "mutated"

	again, _ := store.GetByID(ctx, created.ID)
	if again.Questions[0].Options[0] == "mutated" {
		t.Fatalf("store leaked internal slice")
	}
}

func TestQuizStoreDropsBlankMedia(t *testing.T) {
	in := sampleInput("blank-media")
	in.Questions[0].Media = "   "
	quiz, err := NewQuizStore().Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.Questions[0].Media != "" {
		t.Fatalf("expected blank media to be dropped, got %q", quiz.Questions[0].Media)
	}
}
