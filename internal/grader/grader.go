// Package grader compares a captured answer with a question's ground truth.
// Every question is all-or-nothing.
package grader

import (
	"context"
	"time"

	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/store"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// Strategy decides correctness for one question type.
type Strategy interface {
	Correct(q *models.Question, a models.CapturedAnswer) bool
}

type StrategyFunc func(q *models.Question, a models.CapturedAnswer) bool

func (f StrategyFunc) Correct(q *models.Question, a models.CapturedAnswer) bool { return f(q, a) }

// Grader routes by question type and records incorrect IDs.
type Grader struct {
	strategies map[models.QuestionType]Strategy
	incorrect  store.IncorrectSet
	logger     utils.Logger
	now        func() time.Time
}

type Option func(*Grader)

func WithClock(now func() time.Time) Option { return func(g *Grader) { g.now = now } }

func WithStrategy(t models.QuestionType, s Strategy) Option {
	return func(g *Grader) { g.strategies[t] = s }
}

func New(incorrect store.IncorrectSet, logger utils.Logger, opts ...Option) *Grader {
	g := &Grader{
		strategies: map[models.QuestionType]Strategy{
			models.MultipleChoice: StrategyFunc(gradeMultipleChoice),
			models.TrueFalse:      StrategyFunc(gradeTrueFalse),
			models.Matching:       StrategyFunc(gradeMatching),
			models.DragIntoText:   StrategyFunc(gradeDragIntoText),
		},
		incorrect: incorrect,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Grade produces the verdict for a manual submission. scope identifies
// whose incorrect set receives the question ID.
func (g *Grader) Grade(ctx context.Context, scope string, q *models.Question, a models.CapturedAnswer) models.GradeResult {
	correct := false
	if s, ok := g.strategies[q.Type]; ok && a.Type == q.Type {
		correct = s.Correct(q, a)
	}
	return g.record(ctx, scope, q, a, correct, false)
}

// GradeTimeout is the forced submission on deadline expiry. It is always
// incorrect; whatever was captured is kept for the record.
func (g *Grader) GradeTimeout(ctx context.Context, scope string, q *models.Question, a models.CapturedAnswer) models.GradeResult {
	return g.record(ctx, scope, q, a, false, true)
}

func (g *Grader) record(ctx context.Context, scope string, q *models.Question, a models.CapturedAnswer, correct, timedOut bool) models.GradeResult {
	result := models.GradeResult{
		QuestionID: q.ID,
		Correct:    correct,
		Answer:     a.Clone(),
		TimedOut:   timedOut,
		GradedAt:   g.now(),
	}
	if !correct && g.incorrect != nil {
		if _, err := g.incorrect.AddIncorrect(ctx, scope, q.ID); err != nil {
			g.logger.Warn("Failed to record incorrect question",
				"question_id", q.ID,
				"scope", scope,
				"error", err)
		}
	}
	return result
}

// IsCorrect grades without side effects, e.g. for review mode.
func (g *Grader) IsCorrect(q *models.Question, a models.CapturedAnswer) bool {
	s, ok := g.strategies[q.Type]
	return ok && a.Type == q.Type && s.Correct(q, a)
}
