package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

func TestQuestionValidator_ValidateQuestion(t *testing.T) {
	v := New().Question()

	tests := []struct {
		name     string
		question models.Question
		wantRule string
	}{
		{
			name: "valid multichoice",
			question: models.Question{
				ID: "Q1", Type: models.MultipleChoice,
				Options: []string{"A", "B"}, CorrectIndexes: []int{1},
			},
		},
		{
			name: "correct index out of range",
			question: models.Question{
				ID: "Q1", Type: models.MultipleChoice,
				Options: []string{"A", "B"}, CorrectIndexes: []int{2},
			},
			wantRule: "index_range",
		},
		{
			name: "multichoice without correct index",
			question: models.Question{
				ID: "Q1", Type: models.MultipleChoice, Options: []string{"A"},
			},
			wantRule: "min",
		},
		{
			name:     "unknown type",
			question: models.Question{ID: "Q1", Type: "essay"},
			wantRule: "question_type",
		},
		{
			name:     "missing id",
			question: models.Question{Type: models.TrueFalse},
			wantRule: "required",
		},
		{
			name: "matching pair with empty answer",
			question: models.Question{
				ID: "Q2", Type: models.Matching,
				Pairs: []models.MatchPair{{Prompt: "P1", Answer: ""}},
			},
			wantRule: "required",
		},
		{
			name: "zone group without item",
			question: models.Question{
				ID: "Q3", Type: models.DragIntoText,
				DropZones:      []models.DropZone{{ID: 1, ExpectedGroup: "1"}, {ID: 2, ExpectedGroup: "2"}},
				DraggableItems: []models.DragItem{{Label: "a", Group: "1"}},
			},
			wantRule: "zone_group",
		},
		{
			name: "valid drag into text",
			question: models.Question{
				ID: "Q3", Type: models.DragIntoText,
				DropZones:      []models.DropZone{{ID: 1, ExpectedGroup: "1"}},
				DraggableItems: []models.DragItem{{Label: "a", Group: "1"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.question
			err := v.ValidateQuestion(&q)
			if tt.wantRule == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			rules := make([]string, 0, len(errs))
			for _, e := range errs {
				rules = append(rules, e.Rule)
			}
			assert.Contains(t, rules, tt.wantRule)
		})
	}
}

func TestValidator_SessionMode(t *testing.T) {
	type req struct {
		Mode string `json:"mode" validate:"required,session_mode"`
	}
	v := New()
	assert.NoError(t, v.Validate(req{Mode: "exam"}))

	err := v.Validate(req{Mode: "sprint"})
	require.Error(t, err)
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "mode", errs[0].Field)
	assert.Equal(t, "must be a valid session mode (practice, timed, exam)", errs[0].Message)
}
