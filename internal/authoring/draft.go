// Package authoring holds the quiz editing workflow: draft edits, input
// normalization and the media upload gate.
//
// Every edit helper returns a new Draft built from structural copies; the input
// draft and its slices are never written to, so two holders of the same draft
// cannot observe each other's edits.
package authoring

import (
	"errors"
	"fmt"
	"strings"

	"brainscore-quiz-service/internal/domain"
)

const minOptions = 2

var (
	// ErrTooFewOptions refuses removing an option from a two-option question.
	ErrTooFewOptions = errors.New("question must have at least 2 options")
	// ErrNoSuchQuestion is returned for an out-of-range question position.
	ErrNoSuchQuestion = errors.New("no such question")
	// ErrNoSuchOption is returned for an out-of-range option position.
	ErrNoSuchOption = errors.New("no such option")
)

// Draft is the editable form of a quiz.
type Draft struct {
	domain.QuizInput
}

// NewDraft copies input into a draft.
func NewDraft(in domain.QuizInput) Draft {
	return Draft{QuizInput: copyInput(in)}
}

// BlankQuestion is the template added by AddQuestion.
func BlankQuestion() domain.Question {
	return domain.Question{Options: []string{"", "", "", ""}}
}

// AddQuestion appends a blank question.
func AddQuestion(d Draft) Draft {
	out := clone(d)
	out.Questions = append(out.Questions, BlankQuestion())
	return out
}

// RemoveQuestion drops question qi.
func RemoveQuestion(d Draft, qi int) (Draft, error) {
	if err := checkQuestion(d, qi); err != nil {
		return d, err
	}
	out := clone(d)
	out.Questions = append(out.Questions[:qi:qi], out.Questions[qi+1:]...)
	return out, nil
}

// SetQuestionText replaces the text of question qi.
func SetQuestionText(d Draft, qi int, text string) (Draft, error) {
	return updateQuestion(d, qi, func(q *domain.Question) error {
		q.Text = text
		return nil
	})
}

// SetQuestionMedia replaces the media reference of question qi.
func SetQuestionMedia(d Draft, qi int, media string) (Draft, error) {
	return updateQuestion(d, qi, func(q *domain.Question) error {
		q.Media = media
		return nil
	})
}

// SetOption replaces option oi of question qi.
func SetOption(d Draft, qi, oi int, text string) (Draft, error) {
	return updateQuestion(d, qi, func(q *domain.Question) error {
		if oi < 0 || oi >= len(q.Options) {
			return fmt.Errorf("%w: %d", ErrNoSuchOption, oi)
		}
		q.Options[oi] = text
		return nil
	})
}

// AddOption appends an empty option to question qi.
func AddOption(d Draft, qi int) (Draft, error) {
	return updateQuestion(d, qi, func(q *domain.Question) error {
		q.Options = append(q.Options, "")
		return nil
	})
}

// RemoveOption drops option oi of question qi, keeping at least two options.
// A correct index that falls off the end is clamped to the last option.
func RemoveOption(d Draft, qi, oi int) (Draft, error) {
	return updateQuestion(d, qi, func(q *domain.Question) error {
		if oi < 0 || oi >= len(q.Options) {
			return fmt.Errorf("%w: %d", ErrNoSuchOption, oi)
		}
		if len(q.Options) <= minOptions {
			return ErrTooFewOptions
		}
		q.Options = append(q.Options[:oi:oi], q.Options[oi+1:]...)
		if q.CorrectIndex >= len(q.Options) {
			q.CorrectIndex = len(q.Options) - 1
		}
		return nil
	})
}

// SetCorrectIndex marks option oi of question qi as the right answer.
func SetCorrectIndex(d Draft, qi, oi int) (Draft, error) {
	return updateQuestion(d, qi, func(q *domain.Question) error {
		if oi < 0 || oi >= len(q.Options) {
			return fmt.Errorf("%w: %d", ErrNoSuchOption, oi)
		}
		q.CorrectIndex = oi
		return nil
	})
}

// Normalize trims free text, lowercases the slug and drops blank media, the way
// the form submits it.
func Normalize(in domain.QuizInput) domain.QuizInput {
	out := domain.QuizInput{
		Slug:        strings.ToLower(strings.TrimSpace(in.Slug)),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Type:        domain.QuizType(strings.TrimSpace(string(in.Type))),
		Questions:   make([]domain.Question, len(in.Questions)),
	}
	for i, q := range in.Questions {
		options := make([]string, len(q.Options))
		for j, opt := range q.Options {
			options[j] = strings.TrimSpace(opt)
		}
		out.Questions[i] = domain.Question{
			Text:         strings.TrimSpace(q.Text),
			Media:        strings.TrimSpace(q.Media),
			Options:      options,
			CorrectIndex: q.CorrectIndex,
		}
	}
	return out.Clean()
}

func updateQuestion(d Draft, qi int, edit func(q *domain.Question) error) (Draft, error) {
	if err := checkQuestion(d, qi); err != nil {
		return d, err
	}
	out := clone(d)
	q := out.Questions[qi]
	if err := edit(&q); err != nil {
		return d, err
	}
	out.Questions[qi] = q
	return out, nil
}

func checkQuestion(d Draft, qi int) error {
	if qi < 0 || qi >= len(d.Questions) {
		return fmt.Errorf("%w: %d", ErrNoSuchQuestion, qi+1)
	}
	return nil
}

func clone(d Draft) Draft {
	return Draft{QuizInput: copyInput(d.QuizInput)}
}

func copyInput(in domain.QuizInput) domain.QuizInput {
	out := in
	out.Questions = make([]domain.Question, len(in.Questions))
	for i, q := range in.Questions {
		q.Options = append([]string(nil), q.Options...)
		out.Questions[i] = q
	}
	return out
}
