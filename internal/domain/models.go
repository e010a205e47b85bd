package domain

import (
	"strings"
	"time"
)

// QuizType is a declarative hint about whether questions carry media.
type QuizType string

const (
	QuizTypeText  QuizType = "text"
	QuizTypeImage QuizType = "image"
	QuizTypeMixed QuizType = "mixed"
)

// Question models a multiple-choice question with exactly one correct option.
// Option order is the display order and defines each option's index.
type Question struct {
	Text         string   `json:"question"`
	Media        string   `json:"image,omitempty"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// HasMedia reports whether the question references an image or video.
func (q Question) HasMedia() bool {
	return strings.TrimSpace(q.Media) != ""
}

// Quiz is an ordered collection of questions plus metadata, addressed by a unique slug.
type Quiz struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        QuizType   `json:"type"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// QuizSummary is the list view of a quiz.
type QuizSummary struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Type          QuizType  `json:"type"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summary projects the quiz into its list view.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Slug:          q.Slug,
		Title:         q.Title,
		Description:   q.Description,
		Type:          q.Type,
		QuestionCount: len(q.Questions),
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

// QuizInput is the authoring payload for create and update.
type QuizInput struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        QuizType   `json:"type"`
	Questions   []Question `json:"questions"`
}

// Clean returns a copy with blank media references removed. Stores persist only cleaned input.
func (in QuizInput) Clean() QuizInput {
	out := in
	out.Questions = make([]Question, len(in.Questions))
	for i, q := range in.Questions {
		cleaned := Question{
			Text:         q.Text,
			Options:      append([]string(nil), q.Options...),
			CorrectIndex: q.CorrectIndex,
		}
		if q.HasMedia() {
			cleaned.Media = q.Media
		}
		out.Questions[i] = cleaned
	}
	return out
}

// Input converts a stored quiz back into an editable payload.
func (q Quiz) Input() QuizInput {
	questions := make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		questions[i] = question
	}
	return QuizInput{
		Slug:        q.Slug,
		Title:       q.Title,
		Description: q.Description,
		Type:        q.Type,
		Questions:   questions,
	}
}
