package normalizer

import (
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

var pairExtractors = []Extractor[[]models.MatchPair]{
	pairsFrom(func(r *models.RawQuestion) []models.RawPair { return r.Subquestions }, subquestionPair),
	pairsFrom(func(r *models.RawQuestion) []models.RawPair { return r.MatchingList }, leftRightPair),
	pairsFrom(func(r *models.RawQuestion) []models.RawPair { return r.Pairs }, leftRightPair),
	stemChoicePairs,
}

func firstPresent(values ...models.Scalar) string {
	for _, v := range values {
		if v.Present() {
			return v.String()
		}
	}
	return ""
}

// subquestionPair reads {text|question|left|prompt, answer|right|answertext}.
func subquestionPair(p models.RawPair) models.MatchPair {
	return models.MatchPair{
		Prompt: utils.CleanText(firstPresent(p.Text, p.Question, p.Left, p.Prompt)),
		Answer: utils.CleanText(firstPresent(p.Answer, p.Right, p.AnswerText)),
	}
}

// leftRightPair reads {left|text|question, right|answer}.
func leftRightPair(p models.RawPair) models.MatchPair {
	return models.MatchPair{
		Prompt: utils.CleanText(firstPresent(p.Left, p.Text, p.Question)),
		Answer: utils.CleanText(firstPresent(p.Right, p.Answer)),
	}
}

func pairsFrom(list func(*models.RawQuestion) []models.RawPair, read func(models.RawPair) models.MatchPair) Extractor[[]models.MatchPair] {
	return func(raw *models.RawQuestion) ([]models.MatchPair, bool) {
		var pairs []models.MatchPair
		for _, p := range list(raw) {
			if mp := read(p); mp.Prompt != "" && mp.Answer != "" {
				pairs = append(pairs, mp)
			}
		}
		return pairs, len(pairs) > 0
	}
}

// stemChoicePairs handles stems + choices + solutions (index into choices).
func stemChoicePairs(raw *models.RawQuestion) ([]models.MatchPair, bool) {
	if len(raw.Stems) == 0 || len(raw.Choices) == 0 {
		return nil, false
	}
	var pairs []models.MatchPair
	for i, stem := range raw.Stems {
		if i >= len(raw.Solutions) {
			break
		}
		s := raw.Solutions[i]
		if s < 0 || s >= len(raw.Choices) {
			continue
		}
		mp := models.MatchPair{Prompt: utils.CleanText(stem), Answer: utils.CleanText(raw.Choices[s])}
		if mp.Prompt != "" && mp.Answer != "" {
			pairs = append(pairs, mp)
		}
	}
	return pairs, len(pairs) > 0
}

func normalizeMatching(raw *models.RawQuestion, q *models.Question) error {
	pairs, ok := firstMatch(raw, pairExtractors)
	if !ok {
		return qerrors.NoContent("no matching pairs found")
	}
	q.Pairs = pairs

	answers := make(map[string]bool, len(pairs))
	for _, p := range pairs {
		answers[p.Answer] = true
	}
	seen := map[string]bool{}
	for _, list := range [][]string{raw.Distractors, raw.Choices} {
		for _, d := range list {
			d = utils.CleanText(d)
			if d == "" || answers[d] || seen[d] {
				continue
			}
			seen[d] = true
			q.Distractors = append(q.Distractors, d)
		}
	}
	return nil
}
