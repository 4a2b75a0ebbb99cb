// Package scoring grades answers and turns a finished answer history into a
// percentage and a result band. Everything here is pure.
package scoring

import "quizbox-service/internal/domain"

// Result is the verdict for a finished answer history.
type Result struct {
	Score   int               `json:"score"`
	Total   int               `json:"total"`
	Percent int               `json:"percent"`
	Band    domain.ResultBand `json:"band"`
	// Matched is false when no band contained Percent and Band is the fallback.
	Matched bool `json:"matched"`
}

// Evaluate grades a selection for a question under the quiz's answer mode.
// Single mode needs exactly one selected id whose answer is correct. Multi
// mode needs the selected set to equal the set of correct answer ids.
// Unknown ids yield ErrOptionNotFound.
func Evaluate(mode domain.AnswerMode, question domain.Question, selected []string) (bool, error) {
	byID := make(map[string]domain.Answer, len(question.Answers))
	for _, a := range question.Answers {
		byID[a.ID] = a
	}
	picked := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		if _, ok := byID[id]; !ok {
			return false, domain.ErrOptionNotFound
		}
		picked[id] = struct{}{}
	}

	switch mode {
	case domain.ModeMulti:
		correct := 0
		for _, a := range question.Answers {
			if !a.IsCorrect {
				continue
			}
			correct++
			if _, ok := picked[a.ID]; !ok {
				return false, nil
			}
		}
		return len(picked) == correct, nil
	default:
		if len(picked) != 1 {
			return false, nil
		}
		for id := range picked {
			return byID[id].IsCorrect, nil
		}
		return false, nil
	}
}

// Percent returns round(score/total*100) with half-up rounding, clamped to
// [0, 100]. A zero total yields 0.
func Percent(score, total int) int {
	if total <= 0 || score <= 0 {
		return 0
	}
	if score >= total {
		return 100
	}
	return (200*score + total) / (2 * total)
}

// MatchBand returns the first band containing percent, in document order.
// When none matches it falls back to the first band and reports matched=false.
// ok is false only when bands is empty.
func MatchBand(bands []domain.ResultBand, percent int) (band domain.ResultBand, matched, ok bool) {
	if len(bands) == 0 {
		return domain.ResultBand{}, false, false
	}
	for _, b := range bands {
		if b.Contains(percent) {
			return b, true, true
		}
	}
	return bands[0], false, true
}

// Tally counts the correct entries in history.
func Tally(history []domain.Outcome) int {
	n := 0
	for _, o := range history {
		if o.Correct {
			n++
		}
	}
	return n
}

// Score recomputes the verdict for a finished history against quiz. It gives
// the same figures the player reports in its result phase.
func Score(quiz domain.Quiz, history []domain.Outcome) (Result, error) {
	score := Tally(history)
	total := len(quiz.Questions)
	percent := Percent(score, total)
	band, matched, ok := MatchBand(quiz.Results, percent)
	if !ok {
		return Result{Score: score, Total: total, Percent: percent}, domain.ErrNoResultBands
	}
	return Result{
		Score:   score,
		Total:   total,
		Percent: percent,
		Band:    band,
		Matched: matched,
	}, nil
}
