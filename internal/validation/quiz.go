// Package validation checks authoring payloads before they reach a store.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"brainscore-quiz-service/internal/domain"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateQuiz returns every problem with the payload, in display order. Question
// positions are 1-based. An empty result means the quiz may be saved.
//
// The quiz type is advisory except that image quizzes need media on every question.
func ValidateQuiz(in domain.QuizInput) []string {
	var problems []string

	if validate.Var(in.Slug, "required,slug") != nil {
		problems = append(problems, "Slug must be lowercase letters, numbers, and hyphens only")
	}
	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "Title is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, "Description is required")
	}
	if validate.Var(string(in.Type), "oneof=text image mixed") != nil {
		problems = append(problems, "Type must be 'text', 'image', or 'mixed'")
	}

	for i, q := range in.Questions {
		problems = append(problems, validateQuestion(i+1, in.Type, q)...)
	}
	return problems
}

func validateQuestion(position int, quizType domain.QuizType, q domain.Question) []string {
	var problems []string
	add := func(msg string) {
		problems = append(problems, fmt.Sprintf("Question %d: %s", position, msg))
	}

	if strings.TrimSpace(q.Text) == "" {
		add("Question text is required")
	}
	if len(q.Options) < 2 {
		add("At least 2 options are required")
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		add("Valid correct answer index is required")
	}

	switch {
	case !q.HasMedia():
		if quizType == domain.QuizTypeImage {
			add("Image is required for image quizzes")
		}
	case validate.Var(strings.TrimSpace(q.Media), "url") != nil:
		add("Invalid image URL")
	}
	return problems
}
