package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := error(&FetchError{Status: http.StatusBadGateway, Err: cause})

	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "question fetch failed with status 502: connection reset", err.Error())
	assert.Equal(t, "question fetch failed: connection reset", (&FetchError{Err: cause}).Error())
}

func TestQuestionError(t *testing.T) {
	err := NewQuestionError("normalize", "Q7", Malformed("no options"))

	assert.ErrorIs(t, err, ErrMalformedQuestion)
	assert.Equal(t, "normalize Q7: malformed question: no options", err.Error())

	var qe *QuestionError
	assert.True(t, errors.As(fmt.Errorf("load: %w", err), &qe))
	assert.Equal(t, "Q7", qe.QuestionID)
}

func TestIsLoadFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"malformed", Malformed("x"), true},
		{"no content", NoContent("no zones"), true},
		{"fetch", &FetchError{Status: 404, Err: errors.New("not found")}, true},
		{"auth", fmt.Errorf("refresh: %w", ErrNotAuthenticated), true},
		{"wrapped", NewQuestionError("fetch", "Q1", &FetchError{Err: errors.New("x")}), true},
		{"state", ErrInvalidState, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLoadFailure(tt.err))
		})
	}
}
