package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/authoring"
	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/media"
)

// MediaService uploads question media, one upload at a time per draft.
type MediaService struct {
	uploader media.Uploader
	uploads  *authoring.UploadTracker
	quizzes  *QuizService
	log      logrus.FieldLogger
}

// NewMediaService shares the upload tracker of quizzes so saves are refused while uploading.
func NewMediaService(uploader media.Uploader, quizzes *QuizService, log logrus.FieldLogger) *MediaService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MediaService{uploader: uploader, uploads: quizzes.uploads, quizzes: quizzes, log: log}
}

// Upload sends f for question of the draft identified by draftKey and returns its URL.
// When draftKey is the id of a stored quiz, the URL is also saved into that question.
// The question is checked against the stored quiz before anything is sent.
func (m *MediaService) Upload(ctx context.Context, draftKey string, question int, f media.File) (string, error) {
	stored := true
	quiz, err := m.quizzes.GetByID(ctx, draftKey)
	switch {
	case errors.Is(err, domain.ErrQuizNotFound):
		stored = false
	case err != nil:
		return "", err
	}
	if question < 0 || (stored && question >= len(quiz.Questions)) {
		return "", &domain.ValidationError{
			Problems: []string{fmt.Sprintf("%v: %d", authoring.ErrNoSuchQuestion, question+1)},
		}
	}

	if err := m.uploads.Begin(draftKey, question); err != nil {
		return "", err
	}
	entry := m.log.WithFields(logrus.Fields{"draft": draftKey, "question": question, "file": f.Name})

	url, err := m.uploader.Upload(ctx, f, func(percent int) {
		m.uploads.Progress(draftKey, percent)
	})
	m.uploads.Finish(draftKey)
	if err != nil {
		entry.WithError(err).Warn("media upload failed")
		return "", err
	}
	entry.WithField("url", url).Info("media uploaded")

	if !stored {
		return url, nil
	}
	edit := authoring.Edit{Op: authoring.OpSetMedia, Question: question, Value: url}
	if _, err := m.quizzes.editQuestions(ctx, draftKey, []authoring.Edit{edit}); err != nil {
		// the asset exists; hand its url back so the client can retry the save
		entry.WithError(err).Warn("saving uploaded media failed")
		return url, err
	}
	return url, nil
}

// Status reports the outstanding upload for draftKey.
func (m *MediaService) Status(draftKey string) (authoring.UploadStatus, bool) {
	return m.uploads.Status(draftKey)
}
