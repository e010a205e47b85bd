package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/engine"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &domain.ValidationError{Problems: []string{"Title is required"}}, http.StatusUnprocessableEntity, "validation_failed"},
		{"quiz not found", fmt.Errorf("load: %w", domain.ErrQuizNotFound), http.StatusNotFound, "quiz_not_found"},
		{"session not found", domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
		{"corrupt session", fmt.Errorf("%w: score 4 after 2 questions", engine.ErrSnapshotMismatch), http.StatusNotFound, "session_not_found"},
		{"slug taken", domain.ErrSlugTaken, http.StatusConflict, "slug_taken"},
		{"upload pending", domain.ErrUploadInProgress, http.StatusConflict, "upload_in_progress"},
		{"upload failed", domain.ErrUploadFailed, http.StatusBadGateway, "upload_failed"},
		{"empty quiz", engine.ErrEmptyQuiz, http.StatusUnprocessableEntity, "empty_quiz"},
		{"early advance", engine.ErrAnswerNotRevealed, http.StatusConflict, "invalid_transition"},
		{"not admin", domain.ErrUnauthorized, http.StatusForbidden, "forbidden"},
		{"bad token", domain.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := classify(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestClassifyCorruptSessionHidesDetail(t *testing.T) {
	_, body := classify(fmt.Errorf("%w: phase 7", engine.ErrSnapshotMismatch))
	assert.Equal(t, domain.ErrSessionNotFound.Error(), body.Error)
	assert.Equal(t, "/", body.Redirect)
}
