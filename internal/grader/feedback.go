package grader

import (
	"fmt"

	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// Feedback is the textual rendering of a verdict shown after grading.
type Feedback struct {
	Correct       bool     `json:"correct"`
	TimedOut      bool     `json:"timedOut"`
	Message       string   `json:"message"`
	CorrectAnswer []string `json:"correctAnswer"`
}

func NewFeedback(q *models.Question, r models.GradeResult) Feedback {
	f := Feedback{Correct: r.Correct, TimedOut: r.TimedOut, CorrectAnswer: CorrectAnswer(q)}
	switch {
	case r.TimedOut:
		f.Message = "Time's up!"
	case r.Correct:
		f.Message = "Correct!"
	default:
		f.Message = "Incorrect."
	}
	return f
}

// CorrectAnswer lists the ground truth as plain text lines.
func CorrectAnswer(q *models.Question) []string {
	var out []string
	switch q.Type {
	case models.MultipleChoice:
		for _, i := range q.CorrectIndexes {
			if i >= 0 && i < len(q.Options) {
				out = append(out, utils.CleanText(q.Options[i]))
			}
		}
	case models.TrueFalse:
		if q.CorrectValue {
			out = append(out, "True")
		} else {
			out = append(out, "False")
		}
	case models.Matching:
		for _, p := range q.Pairs {
			out = append(out, fmt.Sprintf("%s → %s", utils.CleanText(p.Prompt), utils.CleanText(p.Answer)))
		}
	case models.DragIntoText:
		for i, z := range q.DropZones {
			out = append(out, fmt.Sprintf("[%d] %s", i+1, q.GroupLabel(z.ExpectedGroup)))
		}
	}
	return out
}
