// Package normalizer turns loosely shaped question payloads into canonical
// questions. Each question type is resolved by an ordered list of
// extractors; the first one that recognises its shape wins.
package normalizer

import (
	"fmt"
	"strings"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
	"github.com/SAP-F-2025/quiz-player/internal/validator"
)

// Normalizer is deterministic: the same payload always yields an equal Question.
type Normalizer struct {
	validator *validator.Validator
	logger    utils.Logger
}

func New(v *validator.Validator, logger utils.Logger) *Normalizer {
	return &Normalizer{validator: v, logger: logger}
}

// Normalize builds the canonical question for raw. Failures wrap
// ErrMalformedQuestion or ErrNoRenderableContent.
func (n *Normalizer) Normalize(raw *models.RawQuestion) (*models.Question, error) {
	if raw == nil {
		return nil, qerrors.Malformed("empty payload")
	}

	qt, ok := models.ParseQuestionType(raw.Type)
	if !ok {
		return nil, qerrors.Malformed("unsupported question type %q", raw.Type)
	}

	q := &models.Question{
		ID:         strings.TrimSpace(raw.ID.String()),
		Type:       qt,
		PromptHTML: raw.Text,
		Files:      raw.Files,
	}

	// Must run before multichoice dispatch.
	if qt == models.MultipleChoice && IsTrueFalsePair(raw.Options) {
		q.Type = models.TrueFalse
		q.Reclassified = true
	}

	var err error
	switch q.Type {
	case models.MultipleChoice:
		err = normalizeMultipleChoice(raw, q)
	case models.TrueFalse:
		err = normalizeTrueFalse(raw, q)
	case models.Matching:
		err = normalizeMatching(raw, q)
	case models.DragIntoText:
		err = normalizeDragIntoText(raw, q)
	}
	if err != nil {
		n.logger.Warn("Question normalization failed",
			"question_id", q.ID,
			"type", raw.Type,
			"error", err)
		return nil, err
	}

	if n.validator != nil {
		if verr := n.validator.Question().ValidateQuestion(q); verr != nil {
			n.logger.Warn("Normalized question failed validation",
				"question_id", q.ID,
				"error", verr)
			return nil, fmt.Errorf("%w: %v", qerrors.ErrMalformedQuestion, verr)
		}
	}

	n.logger.Debug("Question normalized",
		"question_id", q.ID,
		"type", q.Type,
		"reclassified", q.Reclassified)
	return q, nil
}

// IsTrueFalsePair reports a two-option list whose texts are exactly
// "True" and "False", in any order or case.
func IsTrueFalsePair(options []string) bool {
	if len(options) != 2 {
		return false
	}
	a := strings.ToLower(utils.CleanText(options[0]))
	b := strings.ToLower(utils.CleanText(options[1]))
	return (a == "true" && b == "false") || (a == "false" && b == "true")
}
