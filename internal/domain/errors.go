package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a play session does not exist or has expired.
	ErrSessionNotFound = errors.New("play session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a submitted question index is out of range.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates a submitted answer ID is invalid.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidTransition is returned for operations not allowed in the current phase.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrEmptyQuiz is returned when play is started on a quiz without questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrNoResultBands is returned when a result is requested from a quiz without bands.
	ErrNoResultBands = errors.New("quiz has no result bands")
	// ErrQuestionMismatch means an answer targeted a question other than the current one.
	ErrQuestionMismatch = errors.New("answer does not target the current question")
	// ErrInvalidQuiz wraps validation failures on authoring input.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrInvalidCredentials is returned on a failed operator login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnsupportedImage is returned when an upload is not an image.
	ErrUnsupportedImage = errors.New("unsupported image type")
)
