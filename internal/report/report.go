// Package report renders finished sessions as spreadsheets.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

const (
	summarySheet = "Summary"
	resultsSheet = "Results"
	timeLayout   = "2006-01-02 15:04:05"
)

type Session struct {
	SessionID   string
	UserID      string
	Mode        models.SessionMode
	EndReason   string
	GeneratedAt time.Time
	State       models.SessionState
}

// SessionWorkbook builds an xlsx file with a summary sheet and one results
// row per graded question.
func SessionWorkbook(s Session) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	score := s.State.Score()
	summary := [][2]any{
		{"Session", s.SessionID},
		{"User", s.UserID},
		{"Mode", string(s.Mode)},
		{"Generated At", s.GeneratedAt.UTC().Format(timeLayout)},
		{"End Reason", s.EndReason},
		{"Questions", score.Total},
		{"Answered", score.Answered},
		{"Correct", score.Correct},
		{"Timed Out", score.TimedOut},
		{"Percentage", score.Percent},
	}
	for i, row := range summary {
		if err := setRow(f, summarySheet, i+1, row[0], row[1]); err != nil {
			return nil, err
		}
	}

	index, err := f.NewSheet(resultsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []any{"#", "Question ID", "Result", "Timed Out", "Duration (s)", "Answer", "Graded At"}
	if err := setRow(f, resultsSheet, 1, headers...); err != nil {
		return nil, err
	}

	for i, r := range s.State.Results {
		result := "Incorrect"
		if r.Correct {
			result = "Correct"
		}
		row := []any{
			i + 1,
			r.QuestionID,
			result,
			r.TimedOut,
			float64(r.DurationMs) / 1000,
			DescribeAnswer(r.Answer),
			r.GradedAt.UTC().Format(timeLayout),
		}
		if err := setRow(f, resultsSheet, i+2, row...); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

// DescribeAnswer renders a captured answer as one line of text.
func DescribeAnswer(a models.CapturedAnswer) string {
	if a.IsEmpty() {
		return ""
	}
	switch a.Type {
	case models.MultipleChoice:
		parts := make([]string, len(a.Selected))
		for i, idx := range a.Selected {
			parts[i] = fmt.Sprintf("%d", idx+1)
		}
		return "options " + strings.Join(parts, ", ")
	case models.TrueFalse:
		if *a.Value {
			return "True"
		}
		return "False"
	case models.Matching:
		keys := sortedKeys(a.Matches)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if a.Matches[k] != "" {
				parts = append(parts, fmt.Sprintf("%d=%s", k+1, a.Matches[k]))
			}
		}
		return strings.Join(parts, "; ")
	case models.DragIntoText:
		keys := sortedKeys(a.Placements)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			c := a.Placements[k]
			if c.Kind == models.ChipGroup {
				parts = append(parts, fmt.Sprintf("[%d] group %s", k+1, c.Group))
			} else {
				parts = append(parts, fmt.Sprintf("[%d] item %d", k+1, c.Index+1))
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
