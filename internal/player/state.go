package player

import (
	"quizbox-service/internal/domain"
	"quizbox-service/internal/scoring"
)

// PublicAnswer is an answer as shown to the player, without its correctness.
type PublicAnswer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// PublicQuestion is the question being asked.
type PublicQuestion struct {
	Index   int            `json:"index"`
	Text    string         `json:"text"`
	Image   string         `json:"image,omitempty"`
	Answers []PublicAnswer `json:"answers"`
}

// State is the render view of a Player.
type State struct {
	Title        string            `json:"title"`
	Mode         domain.AnswerMode `json:"mode"`
	Phase        domain.Phase      `json:"phase"`
	CurrentIndex int               `json:"currentIndex"`
	Total        int               `json:"total"`
	Score        int               `json:"score"`
	History      []domain.Outcome  `json:"history"`
	Question     *PublicQuestion   `json:"question,omitempty"`
	Result       *scoring.Result   `json:"result,omitempty"`
}

// Snapshot builds the render view for the current phase.
func (p *Player) Snapshot() State {
	st := State{
		Title:        p.quiz.Title,
		Mode:         p.quiz.Mode,
		Phase:        p.phase,
		CurrentIndex: p.index,
		Total:        len(p.quiz.Questions),
		Score:        p.score,
		History:      p.History(),
	}
	if q, ok := p.CurrentQuestion(); ok {
		pq := &PublicQuestion{
			Index:   p.index,
			Text:    q.Text,
			Image:   q.Image,
			Answers: make([]PublicAnswer, len(q.Answers)),
		}
		for i, a := range q.Answers {
			pq.Answers[i] = PublicAnswer{ID: a.ID, Text: a.Text}
		}
		st.Question = pq
	}
	if res, err := p.Result(); err == nil {
		st.Result = &res
	}
	return st
}
