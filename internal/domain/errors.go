package domain

import (
	"errors"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSlugTaken is returned when another quiz already owns the slug.
	ErrSlugTaken = errors.New("a quiz with this slug already exists")
	// ErrSessionNotFound is returned when a play session is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrUploadInProgress blocks saving while media for the draft is still uploading.
	ErrUploadInProgress = errors.New("please wait until upload completes")
	// ErrUploadFailed reports a failed media upload. The slot is released so the caller may retry.
	ErrUploadFailed = errors.New("upload failed")
	// ErrUnauthorized rejects any login that is not the admin identity.
	ErrUnauthorized = errors.New("unauthorized: only admin can login")
	// ErrInvalidCredentials is returned on a bad admin password or token.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries the ordered list of problems found in an authoring payload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "invalid quiz"
	}
	return e.Problems[0]
}

// Detail joins every problem, for logs.
func (e *ValidationError) Detail() string {
	return strings.Join(e.Problems, "; ")
}
