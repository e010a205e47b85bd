package engine

// Tier is the qualitative label used for result copy.
type Tier string

const (
	TierPerfect  Tier = "perfect"
	TierGreat    Tier = "great"
	TierGood     Tier = "good"
	TierPractice Tier = "practice"
)

// TierFor maps a score ratio onto a tier. Lower bounds are inclusive.
func TierFor(ratio float64) Tier {
	switch {
	case ratio >= 1:
		return TierPerfect
	case ratio >= 0.7:
		return TierGreat
	case ratio >= 0.5:
		return TierGood
	default:
		return TierPractice
	}
}

// Summary is the final result of a finished session.
type Summary struct {
	Score int     `json:"score"`
	Total int     `json:"total"`
	Ratio float64 `json:"ratio"`
	Tier  Tier    `json:"tier"`
}

// Summary returns the final result; ErrNotFinished until the last question is advanced.
func (s *Session) Summary() (Summary, error) {
	if s.phase != PhaseFinished {
		return Summary{}, ErrNotFinished
	}
	total := len(s.quiz.Questions)
	ratio := float64(s.score) / float64(total)
	return Summary{
		Score: s.score,
		Total: total,
		Ratio: ratio,
		Tier:  TierFor(ratio),
	}, nil
}
