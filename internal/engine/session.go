// Package engine drives a single player through a quiz.
//
// A Session is a finite state machine with two phases (in progress, finished) and,
// while in progress, a per-question answer state (unanswered, answered). Select,
// Advance and Restart are the only mutators. The first selection for a question
// locks it; a later selection is ignored until Advance moves on. Score changes only
// in Advance, by zero or one.
//
// The engine performs no I/O and never mutates the quiz it was given. A Session is
// not safe for concurrent use; callers serialize access per session.
package engine

import (
	"errors"
	"fmt"

	"brainscore-quiz-service/internal/domain"
)

var (
	// ErrEmptyQuiz is returned for a quiz without questions; it can never be played.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrSessionFinished rejects Select and Advance once the final question was advanced.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrAnswerNotRevealed rejects Advance before an option was selected.
	ErrAnswerNotRevealed = errors.New("no answer selected for the current question")
	// ErrOptionOutOfRange rejects a selection that is not an option of the current question.
	ErrOptionOutOfRange = errors.New("option index out of range")
	// ErrNotFinished is returned when the summary is requested mid-quiz.
	ErrNotFinished = errors.New("quiz session not finished")
)

// Phase is the top-level session state.
type Phase int

const (
	PhaseInProgress Phase = iota
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseInProgress:
		return "in_progress"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*p = PhaseInProgress
	case "finished":
		*p = PhaseFinished
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// AnswerState is the per-question latch. Answered can only be left by Advance or Restart.
type AnswerState int

const (
	Unanswered AnswerState = iota
	Answered
)

func (a AnswerState) String() string {
	if a == Answered {
		return "answered"
	}
	return "unanswered"
}

func (a AnswerState) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AnswerState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unanswered":
		*a = Unanswered
	case "answered":
		*a = Answered
	default:
		return fmt.Errorf("unknown answer state %q", text)
	}
	return nil
}

// Outcome tags the result of a selection that did not violate any precondition.
type Outcome int

const (
	// Accepted means the selection was recorded and the answer revealed.
	Accepted Outcome = iota
	// Ignored means the question was already answered; state is unchanged.
	Ignored
)

func (o Outcome) String() string {
	if o == Ignored {
		return "ignored"
	}
	return "accepted"
}

const noSelection = -1

// Session owns the mutable state of one traversal of a quiz.
type Session struct {
	quiz     domain.Quiz
	current  int
	score    int
	answer   AnswerState
	selected int
	phase    Phase
	// answers holds, per question, the option that was selected when it was advanced.
	answers []int
}

// Playable reports whether a session can be started for the quiz.
func Playable(quiz domain.Quiz) bool {
	return len(quiz.Questions) > 0
}

// New starts a session at the first question. A quiz without questions yields ErrEmptyQuiz.
func New(quiz domain.Quiz) (*Session, error) {
	if !Playable(quiz) {
		return nil, ErrEmptyQuiz
	}
	s := &Session{quiz: quiz}
	s.Restart()
	return s, nil
}

// Restart resets all session state. The quiz is kept as is.
func (s *Session) Restart() {
	s.current = 0
	s.score = 0
	s.answer = Unanswered
	s.selected = noSelection
	s.phase = PhaseInProgress
	s.answers = make([]int, len(s.quiz.Questions))
	for i := range s.answers {
		s.answers[i] = noSelection
	}
}

// Select records the player's choice for the current question. Only the first
// selection per question counts; later calls return Ignored without touching state.
func (s *Session) Select(index int) (Outcome, error) {
	if s.phase == PhaseFinished {
		return Ignored, ErrSessionFinished
	}
	question := s.quiz.Questions[s.current]
	if index < 0 || index >= len(question.Options) {
		return Ignored, fmt.Errorf("%w: %d not in [0,%d)", ErrOptionOutOfRange, index, len(question.Options))
	}

	switch s.answer {
	case Answered:
		return Ignored, nil
	case Unanswered:
		s.selected = index
		s.answer = Answered
		return Accepted, nil
	}
	return Ignored, fmt.Errorf("unknown answer state %d", s.answer)
}

// Advance scores the current answer and moves to the next question, or finishes
// the session after the last one.
func (s *Session) Advance() error {
	if s.phase == PhaseFinished {
		return ErrSessionFinished
	}
	if s.answer != Answered {
		return ErrAnswerNotRevealed
	}

	if s.selected == s.quiz.Questions[s.current].CorrectIndex {
		s.score++
	}
	s.answers[s.current] = s.selected

	if s.current == len(s.quiz.Questions)-1 {
		s.phase = PhaseFinished
	} else {
		s.current++
	}

	s.selected = noSelection
	s.answer = Unanswered
	return nil
}

// Quiz returns the definition the session was started with.
func (s *Session) Quiz() domain.Quiz { return s.quiz }

func (s *Session) Total() int { return len(s.quiz.Questions) }

func (s *Session) CurrentIndex() int { return s.current }

func (s *Session) Score() int { return s.score }

func (s *Session) Phase() Phase { return s.phase }

// Revealed reports whether the current question has been answered.
func (s *Session) Revealed() bool { return s.answer == Answered }

// Selected returns the option picked for the current question, if any.
func (s *Session) Selected() (int, bool) {
	if s.answer != Answered {
		return 0, false
	}
	return s.selected, true
}

// CanAdvance reports whether Advance would be accepted.
func (s *Session) CanAdvance() bool {
	return s.phase == PhaseInProgress && s.answer == Answered
}

// IsLast reports whether the current question is the final one.
func (s *Session) IsLast() bool {
	return s.current == len(s.quiz.Questions)-1
}

// CurrentQuestion returns the question being played. ok is false once finished.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.phase == PhaseFinished {
		return domain.Question{}, false
	}
	return s.quiz.Questions[s.current], true
}

// Answer is the recorded outcome of one advanced question.
type Answer struct {
	Question int  `json:"question"`
	Selected int  `json:"selected"`
	Correct  bool `json:"correct"`
}

// Answers lists the questions advanced so far, in order.
func (s *Session) Answers() []Answer {
	out := make([]Answer, 0, len(s.answers))
	for i, selected := range s.answers {
		if selected == noSelection {
			continue
		}
		out = append(out, Answer{
			Question: i,
			Selected: selected,
			Correct:  selected == s.quiz.Questions[i].CorrectIndex,
		})
	}
	return out
}
