package authoring

import "fmt"

// Op names a single draft edit.
type Op string

const (
	OpAddQuestion    Op = "add_question"
	OpRemoveQuestion Op = "remove_question"
	OpSetText        Op = "set_text"
	OpSetMedia       Op = "set_media"
	OpSetOption      Op = "set_option"
	OpAddOption      Op = "add_option"
	OpRemoveOption   Op = "remove_option"
	OpSetCorrect     Op = "set_correct"
)

// Edit is one operation against a draft. Question and Option are 0-based.
type Edit struct {
	Op       Op     `json:"op"`
	Question int    `json:"question"`
	Option   int    `json:"option"`
	Value    string `json:"value"`
}

// Apply runs e against d and returns the new draft. d is left untouched.
func Apply(d Draft, e Edit) (Draft, error) {
	switch e.Op {
	case OpAddQuestion:
		return AddQuestion(d), nil
	case OpRemoveQuestion:
		return RemoveQuestion(d, e.Question)
	case OpSetText:
		return SetQuestionText(d, e.Question, e.Value)
	case OpSetMedia:
		return SetQuestionMedia(d, e.Question, e.Value)
	case OpSetOption:
		return SetOption(d, e.Question, e.Option, e.Value)
	case OpAddOption:
		return AddOption(d, e.Question)
	case OpRemoveOption:
		return RemoveOption(d, e.Question, e.Option)
	case OpSetCorrect:
		return SetCorrectIndex(d, e.Question, e.Option)
	}
	return d, fmt.Errorf("unknown edit op %q", e.Op)
}
