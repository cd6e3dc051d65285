package session

import (
	"context"
	"slices"

	"github.com/SAP-F-2025/quiz-player/internal/capture"
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/grader"
	"github.com/SAP-F-2025/quiz-player/internal/normalizer"
	"github.com/SAP-F-2025/quiz-player/internal/questionclient"
	"github.com/SAP-F-2025/quiz-player/internal/store"
)

// ReviewItem is a previously missed question shown read-only with its answer.
type ReviewItem struct {
	Question      capture.View `json:"question"`
	CorrectAnswer []string     `json:"correctAnswer"`
}

// Reviewer serves the incorrect-question list outside of any session.
type Reviewer struct {
	incorrect  store.IncorrectSet
	normalizer *normalizer.Normalizer
}

func NewReviewer(incorrect store.IncorrectSet, n *normalizer.Normalizer) *Reviewer {
	return &Reviewer{incorrect: incorrect, normalizer: n}
}

func (r *Reviewer) List(ctx context.Context, scope string) ([]string, error) {
	ids, err := r.incorrect.Incorrect(ctx, scope)
	if ids == nil && err == nil {
		ids = []string{}
	}
	return ids, err
}

// Load fetches one question from the incorrect set and locks its widget.
func (r *Reviewer) Load(ctx context.Context, fetcher questionclient.Fetcher, scope, questionID string) (*ReviewItem, error) {
	ids, err := r.incorrect.Incorrect(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(ids, questionID) {
		return nil, qerrors.ErrQuestionNotFound
	}

	raw, err := fetcher.Fetch(ctx, questionID)
	if err != nil {
		return nil, qerrors.NewQuestionError("fetch", questionID, err)
	}
	q, err := r.normalizer.Normalize(raw)
	if err != nil {
		return nil, qerrors.NewQuestionError("normalize", questionID, err)
	}
	h, err := capture.Render(q, nil)
	if err != nil {
		return nil, qerrors.NewQuestionError("render", questionID, err)
	}
	h.Lock()
	return &ReviewItem{Question: h.View(), CorrectAnswer: grader.CorrectAnswer(q)}, nil
}

func (r *Reviewer) Remove(ctx context.Context, scope, questionID string) error {
	return r.incorrect.RemoveIncorrect(ctx, scope, questionID)
}

func (r *Reviewer) Clear(ctx context.Context, scope string) error {
	return r.incorrect.ClearIncorrect(ctx, scope)
}
