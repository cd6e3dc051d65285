package errors

import (
	"errors"
	"fmt"
)

var (
	// Load-time failures of a single question
	ErrMalformedQuestion   = errors.New("malformed question")
	ErrNoRenderableContent = errors.New("no renderable content")
	ErrFetchFailed         = errors.New("question fetch failed")
	ErrNotAuthenticated    = errors.New("not authenticated")

	ErrQuestionNotFound = errors.New("question not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionFinished  = errors.New("session finished")
	ErrAlreadySubmitted = errors.New("answer already submitted")
	ErrInvalidAction    = errors.New("invalid action")
	ErrInputLocked      = errors.New("answer input is locked")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrAuthUnavailable  = errors.New("auth verifier unavailable")
	ErrInvalidToken     = errors.New("invalid token")
)

// QuestionError ties a load-time failure to the question it happened on.
type QuestionError struct {
	QuestionID string
	Op         string
	Err        error
}

func (e *QuestionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.QuestionID, e.Err)
}

func (e *QuestionError) Unwrap() error {
	return e.Err
}

func NewQuestionError(op, questionID string, err error) *QuestionError {
	return &QuestionError{QuestionID: questionID, Op: op, Err: err}
}

// Malformed wraps a detail message as ErrMalformedQuestion.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedQuestion, fmt.Sprintf(format, args...))
}

// NoContent wraps a detail message as ErrNoRenderableContent.
func NoContent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNoRenderableContent, fmt.Sprintf(format, args...))
}

// FetchError carries the HTTP status of a failed question fetch.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("question fetch failed with status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("question fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{ErrFetchFailed, e.Err}
}

// IsLoadFailure reports errors that end a question load and leave the
// session waiting for a manual advance.
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrMalformedQuestion) ||
		errors.Is(err, ErrNoRenderableContent) ||
		errors.Is(err, ErrFetchFailed) ||
		errors.Is(err, ErrNotAuthenticated)
}
