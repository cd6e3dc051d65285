package normalizer

import (
	"sort"
	"strings"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// Extractor recognises one payload shape. ok is false when the shape is absent.
type Extractor[T any] func(raw *models.RawQuestion) (value T, ok bool)

// firstMatch runs extractors in order and returns the first hit.
func firstMatch[T any](raw *models.RawQuestion, extractors []Extractor[T]) (T, bool) {
	for _, extract := range extractors {
		if v, ok := extract(raw); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// ===== MULTICHOICE =====

var correctIndexExtractors = []Extractor[[]int]{
	correctIndexesField,
	correctIndexField,
	answerFractions,
}

func correctIndexesField(raw *models.RawQuestion) ([]int, bool) {
	if len(raw.CorrectIndexes) == 0 {
		return nil, false
	}
	return raw.CorrectIndexes, true
}

func correctIndexField(raw *models.RawQuestion) ([]int, bool) {
	if raw.CorrectIndex == nil {
		return nil, false
	}
	return []int{*raw.CorrectIndex}, true
}

// answerFractions reads the Moodle answers list: positive fraction or a
// correctness flag marks the option.
func answerFractions(raw *models.RawQuestion) ([]int, bool) {
	var idx []int
	for i, a := range raw.Answers {
		if answerMarkedCorrect(a) {
			idx = append(idx, i)
		}
	}
	return idx, len(idx) > 0
}

func answerMarkedCorrect(a models.RawAnswer) bool {
	if f, ok := a.Fraction.Float(); ok && f > 0 {
		return true
	}
	return a.Correct.IsTrue() || a.IsCorrect.IsTrue() || a.IsCorrect.IsOne()
}

func answerText(a models.RawAnswer) string {
	for _, s := range []models.Scalar{a.Text, a.Answer, a.Value} {
		if s.Present() {
			return s.String()
		}
	}
	return ""
}

func normalizeMultipleChoice(raw *models.RawQuestion, q *models.Question) error {
	options := raw.Options
	if len(options) == 0 {
		for _, a := range raw.Answers {
			options = append(options, strings.TrimSpace(answerText(a)))
		}
	}
	if len(options) == 0 {
		return qerrors.NoContent("multichoice question has no options")
	}

	indexes, ok := firstMatch(raw, correctIndexExtractors)
	if !ok {
		return qerrors.Malformed("multichoice question has no correct option")
	}

	seen := make(map[int]bool, len(indexes))
	set := make([]int, 0, len(indexes))
	for _, i := range indexes {
		if i < 0 || i >= len(options) {
			return qerrors.Malformed("correct index %d out of range for %d options", i, len(options))
		}
		if !seen[i] {
			seen[i] = true
			set = append(set, i)
		}
	}
	sort.Ints(set)

	q.Options = options
	q.CorrectIndexes = set
	q.IsSingle = raw.IsSingle.Truthy() || strings.EqualFold(raw.IsSingle.String(), "true")
	return nil
}

// ===== TRUE/FALSE =====

var trueFalseExtractors = []Extractor[bool]{
	trueFalseFromAnswers,
	trueFalseFromAliases,
	trueFalseFromOptionIndex,
}

// normBool is the permissive boolean reading used by every true/false shape.
func normBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true
	}
	return false
}

func trueFalseFromAnswers(raw *models.RawQuestion) (bool, bool) {
	if len(raw.Answers) == 0 {
		return false, false
	}
	for _, a := range raw.Answers {
		if answerMarkedCorrect(a) {
			return normBool(utils.CleanText(answerText(a))), true
		}
	}
	return false, false
}

func trueFalseFromAliases(raw *models.RawQuestion) (bool, bool) {
	for _, v := range []models.Scalar{raw.CorrectAnswer, raw.Answer, raw.Correct, raw.Solution} {
		if v.Present() {
			return normBool(v.String()), true
		}
	}
	return false, false
}

func trueFalseFromOptionIndex(raw *models.RawQuestion) (bool, bool) {
	if len(raw.Options) == 0 {
		return false, false
	}
	idx := -1
	switch {
	case len(raw.CorrectIndexes) > 0:
		idx = raw.CorrectIndexes[0]
	case raw.CorrectIndex != nil:
		idx = *raw.CorrectIndex
	}
	if idx < 0 || idx >= len(raw.Options) {
		return false, false
	}
	return normBool(utils.CleanText(raw.Options[idx])), true
}

func normalizeTrueFalse(raw *models.RawQuestion, q *models.Question) error {
	value, ok := firstMatch(raw, trueFalseExtractors)
	if !ok {
		return qerrors.Malformed("true/false question has no derivable answer")
	}
	q.CorrectValue = value
	return nil
}
