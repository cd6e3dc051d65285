package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestSessionWorkbook(t *testing.T) {
	graded := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := Session{
		SessionID:   "s-1",
		UserID:      "u-1",
		Mode:        models.ModeExam,
		EndReason:   "completed",
		GeneratedAt: graded,
		State: models.SessionState{
			QuestionIDs: []string{"Q1", "Q2", "Q3"},
			Results: []models.GradeResult{
				{QuestionID: "Q1", Correct: true, DurationMs: 4500, GradedAt: graded,
					Answer: models.CapturedAnswer{Type: models.MultipleChoice, Selected: []int{0, 2}}},
				{QuestionID: "Q2", TimedOut: true, DurationMs: 30000, GradedAt: graded,
					Answer: models.CapturedAnswer{Type: models.TrueFalse}},
			},
		},
	}

	data, err := SessionWorkbook(s)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, resultsSheet}, f.GetSheetList())

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Session", "s-1"}, summary[0])
	assert.Equal(t, []string{"Questions", "3"}, summary[5])
	assert.Equal(t, []string{"Correct", "1"}, summary[7])

	rows, err := f.GetRows(resultsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Question ID", rows[0][1])
	assert.Equal(t, []string{"1", "Q1", "Correct", "FALSE", "4.5", "options 1, 3", "2026-03-01 10:00:00"}, rows[1])
	assert.Equal(t, "Incorrect", rows[2][2])
	assert.Equal(t, "TRUE", rows[2][3])
}

func TestDescribeAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   models.CapturedAnswer
		want string
	}{
		{"empty", models.CapturedAnswer{Type: models.MultipleChoice}, ""},
		{"true", models.CapturedAnswer{Type: models.TrueFalse, Value: boolPtr(true)}, "True"},
		{"false", models.CapturedAnswer{Type: models.TrueFalse, Value: boolPtr(false)}, "False"},
		{"matching", models.CapturedAnswer{Type: models.Matching, Matches: map[int]string{1: "443", 0: "22", 2: ""}}, "1=22; 2=443"},
		{"drag", models.CapturedAnswer{Type: models.DragIntoText, Placements: map[int]models.Chip{
			1: {Kind: models.ChipGroup, Group: "2"},
			0: {Kind: models.ChipItem, Index: 0},
		}}, "[1] item 1; [2] group 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeAnswer(tt.in))
		})
	}
}
