package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

// QuestionValidator checks the invariants a canonical question must hold
// before it reaches the capture widgets and the grader.
type QuestionValidator struct {
	validate *validator.Validate
}

func NewQuestionValidator(validate *validator.Validate) *QuestionValidator {
	return &QuestionValidator{validate: validate}
}

// ValidateQuestion returns ValidationErrors describing every broken invariant.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) error {
	if q == nil {
		return fmt.Errorf("question cannot be nil")
	}
	if err := v.validate.Struct(q); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// questionStructLevel enforces the type specific invariants.
func questionStructLevel(sl validator.StructLevel) {
	q := sl.Current().Interface().(models.Question)

	switch q.Type {
	case models.MultipleChoice:
		if len(q.Options) == 0 {
			sl.ReportError(q.Options, "options", "Options", "required", "")
		}
		if len(q.CorrectIndexes) == 0 {
			sl.ReportError(q.CorrectIndexes, "correctIndexes", "CorrectIndexes", "min", "1")
		}
		for _, idx := range q.CorrectIndexes {
			if idx < 0 || idx >= len(q.Options) {
				sl.ReportError(q.CorrectIndexes, "correctIndexes", "CorrectIndexes", "index_range", "")
				break
			}
		}

	case models.Matching:
		if len(q.Pairs) == 0 {
			sl.ReportError(q.Pairs, "pairs", "Pairs", "min", "1")
		}

	case models.DragIntoText:
		if len(q.DropZones) == 0 {
			sl.ReportError(q.DropZones, "dropZones", "DropZones", "min", "1")
		}
		if len(q.DraggableItems) == 0 {
			sl.ReportError(q.DraggableItems, "draggableItems", "DraggableItems", "min", "1")
		}
		groups := make(map[string]bool, len(q.DraggableItems))
		for _, it := range q.DraggableItems {
			groups[it.Group] = true
		}
		for _, z := range q.DropZones {
			if !groups[z.ExpectedGroup] {
				sl.ReportError(q.DropZones, "dropZones", "DropZones", "zone_group", z.ExpectedGroup)
				break
			}
		}
	}
}
