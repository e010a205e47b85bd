package engine

import (
	"fmt"
	"math"
)

// OptionState classifies how an option is presented after the player's choice.
type OptionState int

const (
	OptionNeutral OptionState = iota
	OptionCorrect
	OptionIncorrectSelected
	OptionDimmed
)

func (o OptionState) String() string {
	switch o {
	case OptionNeutral:
		return "neutral"
	case OptionCorrect:
		return "correct"
	case OptionIncorrectSelected:
		return "incorrect_selected"
	case OptionDimmed:
		return "dimmed"
	}
	return fmt.Sprintf("OptionState(%d)", int(o))
}

func (o OptionState) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// ClassifyOption maps the reveal state of a question onto one option.
// Nothing is highlighted until the answer is revealed; afterwards the correct
// option always wins over the player's own selection.
func ClassifyOption(revealed bool, selected, correct, index int) OptionState {
	switch {
	case !revealed:
		return OptionNeutral
	case index == correct:
		return OptionCorrect
	case index == selected:
		return OptionIncorrectSelected
	default:
		return OptionDimmed
	}
}

// OptionState classifies option index of the current question.
func (s *Session) OptionState(index int) OptionState {
	if s.phase == PhaseFinished {
		return OptionNeutral
	}
	correct := s.quiz.Questions[s.current].CorrectIndex
	return ClassifyOption(s.answer == Answered, s.selected, correct, index)
}

// ProgressPercent is the rounded share of questions reached, counting the current one.
func (s *Session) ProgressPercent() int {
	if s.phase == PhaseFinished {
		return 100
	}
	return int(math.Round(100 * float64(s.current+1) / float64(len(s.quiz.Questions))))
}
