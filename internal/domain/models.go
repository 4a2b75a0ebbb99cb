package domain

import "time"

// AnswerMode selects how a question's selection is graded. It is resolved
// once per quiz, never per question.
type AnswerMode string

const (
	// ModeSingle grades one picked answer by its own isCorrect flag.
	ModeSingle AnswerMode = "single"
	// ModeMulti grades the selected id set against the exact set of correct ids.
	ModeMulti AnswerMode = "multi"
)

// Phase is the playback phase of a session.
type Phase string

const (
	PhaseIntro   Phase = "intro"
	PhasePlaying Phase = "playing"
	PhaseResult  Phase = "result"
)

// Answer represents a possible answer for a question.
type Answer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question models a multiple-choice question with an optional image URL.
type Question struct {
	Text    string   `json:"text"`
	Image   string   `json:"image,omitempty"`
	Answers []Answer `json:"answers"`
}

// ResultBand maps an inclusive percentage range to a verdict.
type ResultBand struct {
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Contains reports whether percent lies in [Min, Max].
func (b ResultBand) Contains(percent int) bool {
	return percent >= b.Min && percent <= b.Max
}

// Quiz is the persisted quiz document. It is immutable while being played.
type Quiz struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Slug      string       `json:"slug"`
	Mode      AnswerMode   `json:"mode"`
	Questions []Question   `json:"questions"`
	Results   []ResultBand `json:"results"`
	PlayCount int64        `json:"playCount"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Outcome is one answer-history entry. Selected is nil for entries recorded
// through the boolean single-choice form.
type Outcome struct {
	QuestionIndex int      `json:"questionIndex"`
	Selected      []string `json:"selected,omitempty"`
	Correct       bool     `json:"correct"`
}

// QuizSummary is the list-view projection of a quiz.
type QuizSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	QuestionCount int       `json:"questionCount"`
	PlayCount     int64     `json:"playCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Summary projects the quiz for list views.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{
		ID:            q.ID,
		Title:         q.Title,
		Slug:          q.Slug,
		QuestionCount: len(q.Questions),
		PlayCount:     q.PlayCount,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}
