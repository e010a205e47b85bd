package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"brainscore-quiz-service/internal/domain"
)

// QuizStore is an in-memory document store with a unique slug index.
type QuizStore struct {
	clock func() time.Time

	mu     sync.RWMutex
	byID   map[string]domain.Quiz
	bySlug map[string]string
}

func NewQuizStore() *QuizStore {
	return &QuizStore{
		clock:  time.Now,
		byID:   make(map[string]domain.Quiz),
		bySlug: make(map[string]string),
	}
}

// List returns quizzes newest first.
func (s *QuizStore) List(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.byID))
	for _, q := range s.byID {
		out = append(out, copyQuiz(q))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (s *QuizStore) GetBySlug(_ context.Context, slug string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySlug[slug]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return copyQuiz(s.byID[id]), nil
}

func (s *QuizStore) GetByID(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.byID[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return copyQuiz(quiz), nil
}

func (s *QuizStore) Create(_ context.Context, in domain.QuizInput) (domain.Quiz, error) {
	in = in.Clean()
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bySlug[in.Slug]; taken {
		return domain.Quiz{}, domain.ErrSlugTaken
	}

	now := s.clock().UTC()
	quiz := domain.Quiz{
		ID:          uuid.NewString(),
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Questions:   in.Questions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.byID[quiz.ID] = quiz
	s.bySlug[quiz.Slug] = quiz.ID
	return copyQuiz(quiz), nil
}

func (s *QuizStore) Update(_ context.Context, id string, in domain.QuizInput) (domain.Quiz, error) {
	in = in.Clean()
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.byID[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if owner, taken := s.bySlug[in.Slug]; taken && owner != id {
		return domain.Quiz{}, domain.ErrSlugTaken
	}

	delete(s.bySlug, quiz.Slug)
	quiz.Slug = in.Slug
	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.Type = in.Type
	quiz.Questions = in.Questions
	quiz.UpdatedAt = s.clock().UTC()
	s.byID[id] = quiz
	s.bySlug[quiz.Slug] = id
	return copyQuiz(quiz), nil
}

func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.byID[id]
	if !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.byID, id)
	delete(s.bySlug, quiz.Slug)
	return nil
}

func copyQuiz(q domain.Quiz) domain.Quiz {
	q.Questions = q.Input().Questions
	return q
}
