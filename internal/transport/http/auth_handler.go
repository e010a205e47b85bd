package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
	log  logrus.FieldLogger
}

func NewAuthHandler(s *auth.Service, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{auth: s, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	auth.Token
	User auth.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.log.WithField("email", req.Email).WithError(err).Warn("login refused")
		writeError(w, h.log, err)
		return
	}
	user, err := h.auth.Authenticate(token.AccessToken)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me reports who the bearer token belongs to. Anonymous callers get isAdmin=false.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.BearerToken(r)
	if !ok {
		writeJSON(w, http.StatusOK, auth.State{})
		return
	}
	user, err := h.auth.Authenticate(token)
	if err != nil {
		writeJSON(w, http.StatusOK, auth.State{})
		return
	}
	writeJSON(w, http.StatusOK, auth.State{User: &user, Authorized: true})
}
