package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"brainscore-quiz-service/internal/domain"
)

type ctxKey struct{}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user set by RequireAdmin.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

// RequireAdmin rejects requests without a valid admin bearer token.
func RequireAdmin(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				deny(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			user, err := s.Authenticate(token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					deny(w, http.StatusForbidden, "forbidden", err.Error())
					return
				}
				deny(w, http.StatusUnauthorized, "unauthorized", err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func deny(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "error": msg})
}
