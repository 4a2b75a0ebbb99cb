// Package player implements the playback state machine for one play session.
//
// A Player is owned by a single session and is not safe for concurrent use;
// callers serialize transitions. It performs no I/O.
package player

import (
	"quizbox-service/internal/domain"
	"quizbox-service/internal/scoring"
)

// Options configures the start state of a Player.
type Options struct {
	// SkipIntro starts play immediately instead of waiting in the intro phase.
	SkipIntro bool
}

// Player tracks progress through a quiz. Score is always the number of
// correct entries in history; both change together in one step.
type Player struct {
	quiz    domain.Quiz
	opts    Options
	phase   domain.Phase
	index   int
	score   int
	history []domain.Outcome
}

// New creates a player for quiz. With SkipIntro the player starts in the
// playing phase, unless the quiz has no questions, in which case it stays in
// intro.
func New(quiz domain.Quiz, opts Options) *Player {
	p := &Player{quiz: quiz, opts: opts}
	p.Reset()
	return p
}

// Quiz returns the document being played.
func (p *Player) Quiz() domain.Quiz { return p.quiz }

func (p *Player) Phase() domain.Phase { return p.phase }

func (p *Player) CurrentIndex() int { return p.index }

func (p *Player) Score() int { return p.score }

// Total is the number of questions in the quiz.
func (p *Player) Total() int { return len(p.quiz.Questions) }

// History returns a copy of the answer history.
func (p *Player) History() []domain.Outcome {
	out := make([]domain.Outcome, len(p.history))
	for i, o := range p.history {
		out[i] = o
		if o.Selected != nil {
			out[i].Selected = append(make([]string, 0, len(o.Selected)), o.Selected...)
		}
	}
	return out
}

// CurrentQuestion returns the question to render while playing.
func (p *Player) CurrentQuestion() (domain.Question, bool) {
	if p.phase != domain.PhasePlaying {
		return domain.Question{}, false
	}
	return p.quiz.Questions[p.index], true
}

// Start moves from intro to playing with cleared counters.
func (p *Player) Start() error {
	if p.phase != domain.PhaseIntro {
		return domain.ErrInvalidTransition
	}
	if len(p.quiz.Questions) == 0 {
		return domain.ErrEmptyQuiz
	}
	p.phase = domain.PhasePlaying
	p.index = 0
	p.score = 0
	p.history = nil
	return nil
}

// SubmitAnswer records the current question's outcome from the single-choice
// form, where the caller already knows whether the pick was correct.
func (p *Player) SubmitAnswer(correct bool) error {
	if p.phase != domain.PhasePlaying {
		return domain.ErrInvalidTransition
	}
	p.record(domain.Outcome{QuestionIndex: p.index, Correct: correct})
	return nil
}

// SubmitSelection grades selected answer ids for questionIndex and records
// the outcome. questionIndex must be the current question.
func (p *Player) SubmitSelection(questionIndex int, selected []string) error {
	if p.phase != domain.PhasePlaying {
		return domain.ErrInvalidTransition
	}
	if questionIndex < 0 || questionIndex >= len(p.quiz.Questions) {
		return domain.ErrQuestionNotFound
	}
	if questionIndex != p.index {
		return domain.ErrQuestionMismatch
	}
	correct, err := scoring.Evaluate(p.quiz.Mode, p.quiz.Questions[questionIndex], selected)
	if err != nil {
		return err
	}
	p.record(domain.Outcome{
		QuestionIndex: questionIndex,
		Selected:      dedupe(selected),
		Correct:       correct,
	})
	return nil
}

func (p *Player) record(o domain.Outcome) {
	p.history = append(p.history, o)
	if o.Correct {
		p.score++
	}
	p.index++
	if p.index == len(p.quiz.Questions) {
		p.phase = domain.PhaseResult
	}
}

// GoBack undoes the most recent answer. From the result phase it returns to
// the last question. It reports false and changes nothing when there is no
// answer to undo.
func (p *Player) GoBack() bool {
	if p.phase == domain.PhaseIntro || p.index == 0 || len(p.history) == 0 {
		return false
	}
	last := p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	if last.Correct {
		p.score--
	}
	p.index--
	p.phase = domain.PhasePlaying
	return true
}

// FinalPercent is the score as a half-up rounded percentage of all questions.
func (p *Player) FinalPercent() int {
	return scoring.Percent(p.score, len(p.quiz.Questions))
}

// MatchedResultBand returns the verdict band. It is only available in the
// result phase.
func (p *Player) MatchedResultBand() (domain.ResultBand, error) {
	if p.phase != domain.PhaseResult {
		return domain.ResultBand{}, domain.ErrInvalidTransition
	}
	band, _, ok := scoring.MatchBand(p.quiz.Results, p.FinalPercent())
	if !ok {
		return domain.ResultBand{}, domain.ErrNoResultBands
	}
	return band, nil
}

// Result returns the scoring verdict for the finished session.
func (p *Player) Result() (scoring.Result, error) {
	if p.phase != domain.PhaseResult {
		return scoring.Result{}, domain.ErrInvalidTransition
	}
	return scoring.Score(p.quiz, p.history)
}

// Reset clears all progress, as if the player had just been created.
func (p *Player) Reset() {
	p.phase = domain.PhaseIntro
	p.index = 0
	p.score = 0
	p.history = nil
	if p.opts.SkipIntro {
		_ = p.Start()
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
