package domain

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns a canonical copy of q: trimmed text, a resolved answer
// mode and an id on every answer. Structural problems are reported as
// ErrInvalidQuiz. The input is not modified.
func Normalize(q Quiz) (Quiz, error) {
	out := q
	out.Title = strings.TrimSpace(q.Title)

	switch AnswerMode(strings.ToLower(strings.TrimSpace(string(q.Mode)))) {
	case "", ModeSingle:
		out.Mode = ModeSingle
	case ModeMulti:
		out.Mode = ModeMulti
	default:
		return Quiz{}, fmt.Errorf("%w: unknown answer mode %q", ErrInvalidQuiz, q.Mode)
	}

	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		nq := Question{
			Text:    strings.TrimSpace(question.Text),
			Image:   strings.TrimSpace(question.Image),
			Answers: make([]Answer, len(question.Answers)),
		}
		seen := make(map[string]struct{}, len(question.Answers))
		for j, answer := range question.Answers {
			id := strings.TrimSpace(answer.ID)
			if id == "" {
				id = "a" + strconv.Itoa(j+1)
			}
			if _, dup := seen[id]; dup {
				return Quiz{}, fmt.Errorf("%w: question %d has duplicate answer id %q", ErrInvalidQuiz, i+1, id)
			}
			seen[id] = struct{}{}
			nq.Answers[j] = Answer{
				ID:        id,
				Text:      strings.TrimSpace(answer.Text),
				IsCorrect: answer.IsCorrect,
			}
		}
		out.Questions[i] = nq
	}

	out.Results = make([]ResultBand, len(q.Results))
	for i, band := range q.Results {
		if band.Min < 0 || band.Max > 100 || band.Min > band.Max {
			return Quiz{}, fmt.Errorf("%w: result band %d has range [%d, %d]", ErrInvalidQuiz, i+1, band.Min, band.Max)
		}
		out.Results[i] = ResultBand{
			Min:   band.Min,
			Max:   band.Max,
			Title: strings.TrimSpace(band.Title),
			Text:  strings.TrimSpace(band.Text),
		}
	}

	if out.Slug == "" {
		out.Slug = Slug(out.Title)
	}
	return out, nil
}

// ValidateDraft checks the authoring requirements for saving a quiz.
func ValidateDraft(q Quiz) error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuiz)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", ErrInvalidQuiz)
	}
	for i, question := range q.Questions {
		if len(question.Answers) == 0 {
			return fmt.Errorf("%w: question %d has no answers", ErrInvalidQuiz, i+1)
		}
	}
	return nil
}

// DefaultResultBand is the single band a new quiz starts with.
func DefaultResultBand() ResultBand {
	return ResultBand{Min: 0, Max: 100}
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug derives a URL-friendly identifier from a title.
func Slug(title string) string {
	folded, _, err := transform.String(accentFolder, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(folded)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
