package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/authoring"
	"brainscore-quiz-service/internal/domain"
)

// QuizHandler serves the public quiz list and the admin authoring routes.
type QuizHandler struct {
	quizzes *app.QuizService
	log     logrus.FieldLogger
}

func NewQuizHandler(quizzes *app.QuizService, log logrus.FieldLogger) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, log: log}
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.quizzes.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Detail returns quiz metadata only; answers stay on the server until revealed in play.
func (h *QuizHandler) Detail(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz.Summary())
}

func (h *QuizHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type createQuizRequest struct {
	DraftID string `json:"draftId"`
	domain.QuizInput
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.quizzes.Create(r.Context(), req.DraftID, req.QuizInput)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *QuizHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in domain.QuizInput
	if !decodeJSON(w, r, &in) {
		return
	}
	quiz, err := h.quizzes.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

type editQuestionsRequest struct {
	Edits []authoring.Edit `json:"edits"`
}

func (h *QuizHandler) EditQuestions(w http.ResponseWriter, r *http.Request) {
	var req editQuestionsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quiz, err := h.quizzes.EditQuestions(r.Context(), chi.URLParam(r, "id"), req.Edits)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
