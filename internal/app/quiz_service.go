package app

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/authoring"
	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/validation"
)

// QuizStore persists quiz documents (memory, Postgres, SQLite).
type QuizStore interface {
	List(ctx context.Context) ([]domain.Quiz, error)
	GetBySlug(ctx context.Context, slug string) (domain.Quiz, error)
	GetByID(ctx context.Context, id string) (domain.Quiz, error)
	Create(ctx context.Context, in domain.QuizInput) (domain.Quiz, error)
	Update(ctx context.Context, id string, in domain.QuizInput) (domain.Quiz, error)
	Delete(ctx context.Context, id string) error
}

// QuizRepository loads quiz content for play (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, slug string) (domain.Quiz, error)
	Invalidate(ctx context.Context, slug string)
}

// QuizService contains the quiz authoring use cases.
type QuizService struct {
	store   QuizStore
	cache   QuizRepository
	uploads *authoring.UploadTracker
	log     logrus.FieldLogger
}

func NewQuizService(store QuizStore, cache QuizRepository, uploads *authoring.UploadTracker, log logrus.FieldLogger) *QuizService {
	if uploads == nil {
		uploads = authoring.NewUploadTracker()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizService{store: store, cache: cache, uploads: uploads, log: log}
}

// List returns every quiz, newest first.
func (s *QuizService) List(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, q.Summary())
	}
	return out, nil
}

// GetBySlug reads through the play cache when one is configured.
func (s *QuizService) GetBySlug(ctx context.Context, slug string) (domain.Quiz, error) {
	if s.cache != nil {
		return s.cache.GetQuiz(ctx, slug)
	}
	return s.store.GetBySlug(ctx, slug)
}

func (s *QuizService) GetByID(ctx context.Context, id string) (domain.Quiz, error) {
	return s.store.GetByID(ctx, id)
}

// Create saves a new quiz. draftKey identifies the unsaved draft for the upload gate.
func (s *QuizService) Create(ctx context.Context, draftKey string, in domain.QuizInput) (domain.Quiz, error) {
	if draftKey != "" && s.uploads.Busy(draftKey) {
		return domain.Quiz{}, domain.ErrUploadInProgress
	}
	in, err := s.prepare(ctx, "", in)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz, err := s.store.Create(ctx, in)
	if err != nil {
		return domain.Quiz{}, err
	}
	s.invalidate(ctx, quiz.Slug)
	s.log.WithFields(logrus.Fields{"quiz": quiz.ID, "slug": quiz.Slug}).Info("quiz created")
	return quiz, nil
}

// Update replaces the quiz with id. Saving is refused while an upload for it is pending.
func (s *QuizService) Update(ctx context.Context, id string, in domain.QuizInput) (domain.Quiz, error) {
	if s.uploads.Busy(id) {
		return domain.Quiz{}, domain.ErrUploadInProgress
	}
	return s.update(ctx, id, in)
}

// EditQuestions applies draft edits to a stored quiz and saves the result.
func (s *QuizService) EditQuestions(ctx context.Context, id string, edits []authoring.Edit) (domain.Quiz, error) {
	if s.uploads.Busy(id) {
		return domain.Quiz{}, domain.ErrUploadInProgress
	}
	return s.editQuestions(ctx, id, edits)
}

func (s *QuizService) editQuestions(ctx context.Context, id string, edits []authoring.Edit) (domain.Quiz, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	draft := authoring.NewDraft(current.Input())
	for _, e := range edits {
		if draft, err = authoring.Apply(draft, e); err != nil {
			return domain.Quiz{}, &domain.ValidationError{Problems: []string{err.Error()}}
		}
	}
	return s.update(ctx, id, draft.QuizInput)
}

func (s *QuizService) update(ctx context.Context, id string, in domain.QuizInput) (domain.Quiz, error) {
	previous, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	in, err = s.prepare(ctx, id, in)
	if err != nil {
		return domain.Quiz{}, err
	}

	quiz, err := s.store.Update(ctx, id, in)
	if err != nil {
		return domain.Quiz{}, err
	}
	s.invalidate(ctx, previous.Slug)
	if quiz.Slug != previous.Slug {
		s.invalidate(ctx, quiz.Slug)
	}
	s.log.WithFields(logrus.Fields{"quiz": quiz.ID, "slug": quiz.Slug}).Info("quiz updated")
	return quiz, nil
}

func (s *QuizService) Delete(ctx context.Context, id string) error {
	quiz, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, quiz.Slug)
	s.log.WithFields(logrus.Fields{"quiz": quiz.ID, "slug": quiz.Slug}).Info("quiz deleted")
	return nil
}

// prepare normalizes and validates input, and checks the slug is free for ownerID.
func (s *QuizService) prepare(ctx context.Context, ownerID string, in domain.QuizInput) (domain.QuizInput, error) {
	in = authoring.Normalize(in)
	if problems := validation.ValidateQuiz(in); len(problems) > 0 {
		return domain.QuizInput{}, &domain.ValidationError{Problems: problems}
	}

	existing, err := s.store.GetBySlug(ctx, in.Slug)
	switch {
	case err == nil && existing.ID != ownerID:
		return domain.QuizInput{}, domain.ErrSlugTaken
	case err != nil && !errors.Is(err, domain.ErrQuizNotFound):
		return domain.QuizInput{}, err
	}
	return in, nil
}

func (s *QuizService) invalidate(ctx context.Context, slug string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, slug)
	}
}
