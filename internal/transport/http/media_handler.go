package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/media"
)

// MediaHandler accepts question media uploads from the admin editor.
type MediaHandler struct {
	media    *app.MediaService
	maxBytes int64
	log      logrus.FieldLogger
}

func NewMediaHandler(svc *app.MediaService, maxBytes int64, log logrus.FieldLogger) *MediaHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &MediaHandler{media: svc, maxBytes: maxBytes, log: log}
}

type uploadResponse struct {
	URL      string `json:"url"`
	Question int    `json:"question"`
}

// Upload expects a multipart form with a "file" part. Query: draft (quiz id or client draft id), question.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	draft := r.URL.Query().Get("draft")
	question, err := strconv.Atoi(r.URL.Query().Get("question"))
	if draft == "" || err != nil || question < 0 {
		writeErr(w, http.StatusBadRequest, "bad_request", "draft and question are required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, http.StatusRequestEntityTooLarge, "too_large", "file exceeds upload limit")
			return
		}
		writeErr(w, http.StatusBadRequest, "bad_request", "file is required")
		return
	}
	defer file.Close()

	url, err := h.media.Upload(r.Context(), draft, question, media.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{URL: url, Question: question})
}

type uploadStatusResponse struct {
	Uploading bool `json:"uploading"`
	Question  *int `json:"question,omitempty"`
	Percent   int  `json:"percent"`
}

func (h *MediaHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, ok := h.media.Status(r.URL.Query().Get("draft"))
	if !ok {
		writeJSON(w, http.StatusOK, uploadStatusResponse{})
		return
	}
	question := status.Question
	writeJSON(w, http.StatusOK, uploadStatusResponse{Uploading: true, Question: &question, Percent: status.Percent})
}
