package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/infra/memory"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuizLoader: seededStore(t)}
	repo := NewQuizRepository(client, loader, time.Minute, quietLogger())

	quiz, err := repo.GetQuiz(context.Background(), "frontend-basics")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:frontend-basics") {
		t.Fatalf("expected quiz cached in redis")
	}
	if ttl := mr.TTL("quiz:frontend-basics"); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected jittered ttl around a minute, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuiz(context.Background(), "frontend-basics")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.ID != quiz.ID || cached.Questions[0].CorrectIndex != 1 {
		t.Fatalf("cached quiz differs: %+v", cached)
	}

	repo.Invalidate(context.Background(), "frontend-basics")
	if mr.Exists("quiz:frontend-basics") {
		t.Fatalf("expected key removed on invalidate")
	}
	_, _ = repo.GetQuiz(context.Background(), "frontend-basics")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestQuizRepositoryMissDoesNotCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewQuizRepository(newClient(mr), seededStore(t), time.Minute, quietLogger())
	if _, err := repo.GetQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("quiz:missing") {
		t.Fatalf("expected nothing cached for a miss")
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) GetBySlug(ctx context.Context, slug string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.GetBySlug(ctx, slug)
}

func seededStore(t *testing.T) *memory.QuizStore {
	t.Helper()
	store := memory.NewQuizStore()
	_, err := store.Create(context.Background(), domain.QuizInput{
		Slug:        "frontend-basics",
		Title:       "Frontend Basics",
		Description: "Markup and styles",
		Type:        domain.QuizTypeText,
		Questions: []domain.Question{
			{Text: "Which property sets text color?", Options: []string{"font-color", "color"}, CorrectIndex: 1},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
