package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/engine"
)

type errorResponse struct {
	Code     string   `json:"code"`
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Error: msg})
}

// classify maps a use-case error onto a status and a stable error code.
func classify(err error) (int, errorResponse) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorResponse{Code: "validation_failed", Error: verr.Error(), Problems: verr.Problems}
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, errorResponse{Code: "quiz_not_found", Error: err.Error(), Redirect: "/"}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, errorResponse{Code: "session_not_found", Error: err.Error()}
	case errors.Is(err, engine.ErrSnapshotMismatch):
		// stored state no longer fits its quiz; the client starts over
		return http.StatusNotFound, errorResponse{Code: "session_not_found", Error: domain.ErrSessionNotFound.Error(), Redirect: "/"}
	case errors.Is(err, domain.ErrSlugTaken):
		return http.StatusConflict, errorResponse{Code: "slug_taken", Error: err.Error()}
	case errors.Is(err, domain.ErrUploadInProgress):
		return http.StatusConflict, errorResponse{Code: "upload_in_progress", Error: err.Error()}
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusBadGateway, errorResponse{Code: "upload_failed", Error: err.Error()}
	case errors.Is(err, engine.ErrEmptyQuiz):
		return http.StatusUnprocessableEntity, errorResponse{Code: "empty_quiz", Error: err.Error(), Redirect: "/"}
	case errors.Is(err, engine.ErrSessionFinished),
		errors.Is(err, engine.ErrAnswerNotRevealed),
		errors.Is(err, engine.ErrOptionOutOfRange),
		errors.Is(err, engine.ErrNotFinished):
		return http.StatusConflict, errorResponse{Code: "invalid_transition", Error: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, errorResponse{Code: "forbidden", Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Code: "unauthorized", Error: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Code: "internal", Error: "internal error"}
}

func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return false
	}
	return true
}
