package grader

import (
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// gradeMultipleChoice requires exact set equality: no missing and no extra index.
func gradeMultipleChoice(q *models.Question, a models.CapturedAnswer) bool {
	want := make(map[int]bool, len(q.CorrectIndexes))
	for _, i := range q.CorrectIndexes {
		want[i] = true
	}
	got := make(map[int]bool, len(a.Selected))
	for _, i := range a.Selected {
		if !want[i] {
			return false
		}
		got[i] = true
	}
	return len(got) == len(want) && len(want) > 0
}

func gradeTrueFalse(q *models.Question, a models.CapturedAnswer) bool {
	return a.Value != nil && *a.Value == q.CorrectValue
}

// gradeMatching compares HTML-stripped text of every prompt's selection.
func gradeMatching(q *models.Question, a models.CapturedAnswer) bool {
	if len(q.Pairs) == 0 {
		return false
	}
	for i, p := range q.Pairs {
		chosen, ok := a.Matches[i]
		if !ok || utils.CleanText(chosen) != utils.CleanText(p.Answer) {
			return false
		}
	}
	return true
}

// gradeDragIntoText requires every zone to hold a chip of its expected group.
func gradeDragIntoText(q *models.Question, a models.CapturedAnswer) bool {
	if len(q.DropZones) == 0 {
		return false
	}
	for i, z := range q.DropZones {
		chip, ok := a.Placements[i]
		if !ok || chipGroup(q, chip) != z.ExpectedGroup {
			return false
		}
	}
	return true
}

func chipGroup(q *models.Question, c models.Chip) string {
	if c.Kind == models.ChipItem {
		if c.Index < 0 || c.Index >= len(q.DraggableItems) {
			return ""
		}
		return q.DraggableItems[c.Index].Group
	}
	return c.Group
}
