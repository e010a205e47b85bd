package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/app"
)

// PlayHandler exposes quiz sessions over plain request/response.
type PlayHandler struct {
	play *app.PlayService
	log  logrus.FieldLogger
}

func NewPlayHandler(play *app.PlayService, log logrus.FieldLogger) *PlayHandler {
	return &PlayHandler{play: play, log: log}
}

type startRequest struct {
	Slug string `json:"slug"`
}

type selectRequest struct {
	Option *int `json:"option"`
}

func (h *PlayHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Slug == "" {
		writeErr(w, http.StatusBadRequest, "bad_request", "slug is required")
		return
	}
	state, err := h.play.Start(r.Context(), req.Slug)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *PlayHandler) State(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.play.State(r.Context(), chi.URLParam(r, "id")))
}

func (h *PlayHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Option == nil {
		writeErr(w, http.StatusBadRequest, "bad_request", "option is required")
		return
	}
	h.respond(w)(h.play.Select(r.Context(), chi.URLParam(r, "id"), *req.Option))
}

func (h *PlayHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.play.Advance(r.Context(), chi.URLParam(r, "id")))
}

func (h *PlayHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.play.Restart(r.Context(), chi.URLParam(r, "id")))
}

func (h *PlayHandler) End(w http.ResponseWriter, r *http.Request) {
	if err := h.play.End(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlayHandler) respond(w http.ResponseWriter) func(app.PlayState, error) {
	return func(state app.PlayState, err error) {
		if err != nil {
			writeError(w, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}
