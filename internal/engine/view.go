package engine

// OptionView is one rendered option with its feedback classification.
type OptionView struct {
	Index int         `json:"index"`
	Text  string      `json:"text"`
	State OptionState `json:"state"`
}

// QuestionView is the current question as shown to the player. CorrectIndex is
// only populated once the answer is revealed.
type QuestionView struct {
	Number       int          `json:"number"`
	Text         string       `json:"text"`
	Media        string       `json:"media,omitempty"`
	Options      []OptionView `json:"options"`
	CorrectIndex *int         `json:"correctIndex,omitempty"`
}

// View is a read-only projection of the session for rendering.
type View struct {
	QuizID       string        `json:"quizId"`
	Slug         string        `json:"slug"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Phase        Phase         `json:"phase"`
	Total        int           `json:"total"`
	CurrentIndex int           `json:"currentIndex"`
	Progress     int           `json:"progress"`
	Revealed     bool          `json:"revealed"`
	Selected     *int          `json:"selected,omitempty"`
	CanAdvance   bool          `json:"canAdvance"`
	IsLast       bool          `json:"isLast"`
	Question     *QuestionView `json:"question,omitempty"`
	Summary      *Summary      `json:"summary,omitempty"`
}

// View projects the session state.
func (s *Session) View() View {
	v := View{
		QuizID:       s.quiz.ID,
		Slug:         s.quiz.Slug,
		Title:        s.quiz.Title,
		Description:  s.quiz.Description,
		Phase:        s.phase,
		Total:        len(s.quiz.Questions),
		CurrentIndex: s.current,
		Progress:     s.ProgressPercent(),
		Revealed:     s.Revealed(),
		CanAdvance:   s.CanAdvance(),
		IsLast:       s.IsLast(),
	}

	if summary, err := s.Summary(); err == nil {
		v.Summary = &summary
		return v
	}

	question := s.quiz.Questions[s.current]
	qv := &QuestionView{
		Number:  s.current + 1,
		Text:    question.Text,
		Media:   question.Media,
		Options: make([]OptionView, len(question.Options)),
	}
	for i, text := range question.Options {
		qv.Options[i] = OptionView{Index: i, Text: text, State: s.OptionState(i)}
	}
	if selected, ok := s.Selected(); ok {
		v.Selected = &selected
		correct := question.CorrectIndex
		qv.CorrectIndex = &correct
	}
	v.Question = qv
	return v
}
