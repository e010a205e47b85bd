package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)

	if err := store.Put(ctx, app.PlaySession{ID: "s1"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected session present: %v", err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func TestSessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(time.Minute)
	now := time.Now()
	store.clock = func() time.Time { return now }

	_ = store.Put(ctx, app.PlaySession{ID: "s1"})
	now = now.Add(30 * time.Second)
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("expected live session: %v", err)
	}
	now = now.Add(time.Minute)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}
