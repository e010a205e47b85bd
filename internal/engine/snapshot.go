package engine

import (
	"errors"
	"fmt"

	"brainscore-quiz-service/internal/domain"
)

// ErrSnapshotMismatch is returned when stored state does not fit the quiz it is restored onto.
var ErrSnapshotMismatch = errors.New("session snapshot does not match quiz")

// Snapshot is the serializable form of a session's mutable state.
type Snapshot struct {
	CurrentIndex int         `json:"currentIndex"`
	Score        int         `json:"score"`
	Answer       AnswerState `json:"answer"`
	Selected     *int        `json:"selected,omitempty"`
	Phase        Phase       `json:"phase"`
	Answers      []int       `json:"answers"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		CurrentIndex: s.current,
		Score:        s.score,
		Answer:       s.answer,
		Phase:        s.phase,
		Answers:      append([]int(nil), s.answers...),
	}
	if s.answer == Answered {
		selected := s.selected
		snap.Selected = &selected
	}
	return snap
}

// Restore rebuilds a session for quiz from a snapshot, checking every invariant.
func Restore(quiz domain.Quiz, snap Snapshot) (*Session, error) {
	s, err := New(quiz)
	if err != nil {
		return nil, err
	}
	total := len(quiz.Questions)

	if snap.CurrentIndex < 0 || snap.CurrentIndex >= total {
		return nil, fmt.Errorf("%w: current index %d of %d", ErrSnapshotMismatch, snap.CurrentIndex, total)
	}
	if len(snap.Answers) != 0 && len(snap.Answers) != total {
		return nil, fmt.Errorf("%w: %d recorded answers for %d questions", ErrSnapshotMismatch, len(snap.Answers), total)
	}

	advanced := snap.CurrentIndex
	switch snap.Phase {
	case PhaseInProgress:
	case PhaseFinished:
		if snap.CurrentIndex != total-1 || snap.Answer != Unanswered {
			return nil, fmt.Errorf("%w: finished session must rest on the last question", ErrSnapshotMismatch)
		}
		advanced = total
	default:
		return nil, fmt.Errorf("%w: phase %d", ErrSnapshotMismatch, snap.Phase)
	}
	if snap.Score < 0 || snap.Score > advanced {
		return nil, fmt.Errorf("%w: score %d after %d questions", ErrSnapshotMismatch, snap.Score, advanced)
	}

	switch snap.Answer {
	case Answered:
		options := len(quiz.Questions[snap.CurrentIndex].Options)
		if snap.Selected == nil || *snap.Selected < 0 || *snap.Selected >= options {
			return nil, fmt.Errorf("%w: answered without a valid selection", ErrSnapshotMismatch)
		}
		s.selected = *snap.Selected
	case Unanswered:
		if snap.Selected != nil {
			return nil, fmt.Errorf("%w: selection without answer", ErrSnapshotMismatch)
		}
	default:
		return nil, fmt.Errorf("%w: answer state %d", ErrSnapshotMismatch, snap.Answer)
	}

	s.current = snap.CurrentIndex
	s.score = snap.Score
	s.answer = snap.Answer
	s.phase = snap.Phase
	if len(snap.Answers) == total {
		copy(s.answers, snap.Answers)
	}
	return s, nil
}
