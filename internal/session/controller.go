// Package session drives one quiz run: it samples question IDs, loads and
// renders each question, owns the countdowns, and collects results.
//
// Every event (user action, timer tick, finished fetch) is applied under the
// controller mutex, so the state machine sees them one at a time in arrival
// order.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-player/internal/capture"
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/events"
	"github.com/SAP-F-2025/quiz-player/internal/grader"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/normalizer"
	"github.com/SAP-F-2025/quiz-player/internal/questionclient"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseLoading        Phase = "loading"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseGraded         Phase = "graded"
	PhaseFinished       Phase = "finished"
)

const anonymousScope = "anonymous"

// Deps are the collaborators a controller needs.
type Deps struct {
	Fetcher    questionclient.Fetcher
	Normalizer *normalizer.Normalizer
	Grader     *grader.Grader
	Sampler    *Sampler
	Telemetry  *events.Telemetry
	Logger     utils.Logger
	Shuffle    capture.Shuffler
	Now        func() time.Time
}

type Controller struct {
	id     string
	userID string
	cfg    ModeConfig
	deps   Deps
	logger utils.Logger

	mu         sync.Mutex
	phase      Phase
	state      models.SessionState
	generation uint64
	loadDone   chan struct{}
	handle     capture.Handle
	loadErr    error
	feedback   *grader.Feedback
	submitted  bool
	shownAt    time.Time
	advanceAt  *time.Time
	endReason  string
}

func NewController(id, userID string, cfg ModeConfig, deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{
		id:     id,
		userID: userID,
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With("session_id", id, "mode", string(cfg.Mode)),
		phase:  PhaseIdle,
	}
}

func (c *Controller) ID() string         { return c.id }
func (c *Controller) UserID() string     { return c.userID }
func (c *Controller) Config() ModeConfig { return c.cfg }

func (c *Controller) scope() string { return Scope(c.userID) }

// Scope is the key of a user's incorrect set and recent list.
func Scope(userID string) string {
	if userID == "" {
		return anonymousScope
	}
	return userID
}

// Start samples the question list and begins loading the first question.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		return fmt.Errorf("%w: start from %s", qerrors.ErrInvalidState, c.phase)
	}
	return c.begin(ctx)
}

// Restart discards the current run, including any in-flight load, and
// starts over with a freshly sampled list. The incorrect set is kept.
func (c *Controller) Restart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.reset()
	c.logger.Info("Session restarted")
	return c.begin(ctx)
}

func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.state = models.SessionState{}
	c.handle = nil
	c.loadErr = nil
	c.feedback = nil
	c.submitted = false
	c.advanceAt = nil
	c.endReason = ""
}

func (c *Controller) begin(ctx context.Context) error {
	ids, err := c.deps.Sampler.Sample(ctx, c.scope(), c.cfg.QuestionCount, c.cfg.AvoidRecent)
	if err != nil {
		return err
	}
	c.state = models.SessionState{QuestionIDs: ids}
	if c.cfg.SessionLimit > 0 {
		deadline := c.deps.Now().Add(c.cfg.SessionLimit)
		c.state.SessionDeadline = &deadline
	}
	c.logger.Info("Session started", "questions", len(ids))
	c.startLoad(ctx)
	return nil
}

func (c *Controller) startLoad(ctx context.Context) {
	c.generation++
	gen := c.generation
	idx := c.state.CurrentIndex
	id := c.state.QuestionIDs[idx]

	c.phase = PhaseLoading
	c.handle = nil
	c.loadErr = nil
	c.feedback = nil
	c.submitted = false
	c.advanceAt = nil
	c.state.PerQuestionDeadline = nil

	done := make(chan struct{})
	c.loadDone = done
	loadCtx := context.WithoutCancel(ctx)

	c.logger.Debug("Loading question", "index", idx, "question_id", id)
	go func() {
		defer close(done)
		h, err := c.load(loadCtx, id)
		c.applyLoad(gen, idx, h, err)
	}()
}

func (c *Controller) load(ctx context.Context, id string) (capture.Handle, error) {
	raw, err := c.deps.Fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, qerrors.NewQuestionError("fetch", id, err)
	}
	q, err := c.deps.Normalizer.Normalize(raw)
	if err != nil {
		return nil, qerrors.NewQuestionError("normalize", id, err)
	}
	h, err := capture.Render(q, c.deps.Shuffle)
	if err != nil {
		return nil, qerrors.NewQuestionError("render", id, err)
	}
	return h, nil
}

// applyLoad installs a finished load unless the controller has moved on
// since it was started.
func (c *Controller) applyLoad(gen uint64, idx int, h capture.Handle, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation || c.phase != PhaseLoading || idx != c.state.CurrentIndex {
		c.logger.Debug("Discarding stale question load", "index", idx)
		return
	}
	if err != nil {
		c.loadErr = err
		c.logger.Warn("Question failed to load", "index", idx, "error", err)
		return
	}

	c.handle = h
	c.phase = PhaseAwaitingAnswer
	c.shownAt = c.deps.Now()
	if c.cfg.Timed() {
		deadline := c.shownAt.Add(c.cfg.PerQuestionLimit)
		c.state.PerQuestionDeadline = &deadline
	}
}

// AwaitLoad blocks until the current question load has been applied.
func (c *Controller) AwaitLoad(ctx context.Context) error {
	c.mu.Lock()
	done := c.loadDone
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply forwards one interaction to the live widget.
func (c *Controller) Apply(a capture.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.phase == PhaseFinished:
		return qerrors.ErrSessionFinished
	case c.phase != PhaseAwaitingAnswer || c.submitted:
		return qerrors.ErrInputLocked
	}
	return c.handle.Apply(a)
}

// Submit grades the current answer. Only the first of a manual submit and
// a timeout for the same question takes effect.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.phase {
	case PhaseFinished:
		return qerrors.ErrSessionFinished
	case PhaseGraded:
		return qerrors.ErrAlreadySubmitted
	case PhaseAwaitingAnswer:
	default:
		return fmt.Errorf("%w: submit while %s", qerrors.ErrInvalidState, c.phase)
	}
	if c.submitted {
		return qerrors.ErrAlreadySubmitted
	}

	c.grade(ctx, false)
	if c.cfg.AdvanceOnSubmit {
		c.advance(ctx)
	}
	return nil
}

func (c *Controller) grade(ctx context.Context, timedOut bool) {
	c.submitted = true
	c.handle.Lock()

	q := c.handle.Question()
	answer := c.handle.CurrentAnswer()
	var r models.GradeResult
	if timedOut {
		r = c.deps.Grader.GradeTimeout(ctx, c.scope(), q, answer)
	} else {
		r = c.deps.Grader.Grade(ctx, c.scope(), q, answer)
	}
	r.DurationMs = c.deps.Now().Sub(c.shownAt).Milliseconds()

	c.state.Results = append(c.state.Results, r)
	c.state.PerQuestionDeadline = nil
	fb := grader.NewFeedback(q, r)
	c.feedback = &fb
	c.phase = PhaseGraded

	c.logger.Debug("Question graded", "question_id", q.ID, "correct", r.Correct, "timed_out", timedOut)
	c.deps.Telemetry.RecordAnswer(ctx, events.AnswerRecord{
		QuestionID:     r.QuestionID,
		SelectedAnswer: r.Answer,
		IsCorrect:      r.Correct,
		TimedOut:       r.TimedOut,
		Mode:           c.cfg.Mode,
		DurationMs:     r.DurationMs,
		SessionID:      c.id,
		UserID:         c.userID,
		Timestamp:      r.GradedAt,
	})
}

// Tick delivers a timer event. Repeated ticks past a deadline change
// nothing after the first.
func (c *Controller) Tick(ctx context.Context, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseIdle || c.phase == PhaseFinished {
		return
	}
	if d := c.state.SessionDeadline; d != nil && !now.Before(*d) {
		c.finish(ctx, "time expired")
		return
	}
	if c.phase == PhaseAwaitingAnswer && !c.submitted {
		if d := c.state.PerQuestionDeadline; d != nil && !now.Before(*d) {
			c.logger.Debug("Question timed out", "index", c.state.CurrentIndex)
			c.grade(ctx, true)
			at := now.Add(c.cfg.TimeoutAdvanceDelay)
			c.advanceAt = &at
		}
	}
	if c.phase == PhaseGraded && c.advanceAt != nil && !now.Before(*c.advanceAt) {
		c.advance(ctx)
	}
}

// Next moves past a graded question, or past one that failed to load.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.phase == PhaseFinished:
		return qerrors.ErrSessionFinished
	case c.phase == PhaseGraded:
	case c.phase == PhaseLoading && c.loadErr != nil:
	default:
		return fmt.Errorf("%w: next while %s", qerrors.ErrInvalidState, c.phase)
	}
	c.advance(ctx)
	return nil
}

func (c *Controller) advance(ctx context.Context) {
	c.advanceAt = nil
	c.state.CurrentIndex++
	if c.state.CurrentIndex >= len(c.state.QuestionIDs) {
		c.finish(ctx, "completed")
		return
	}
	c.startLoad(ctx)
}

func (c *Controller) finish(ctx context.Context, reason string) {
	c.generation++
	c.phase = PhaseFinished
	c.endReason = reason
	c.advanceAt = nil
	c.state.PerQuestionDeadline = nil
	c.state.SessionDeadline = nil
	if c.handle != nil {
		c.handle.Lock()
	}

	score := c.state.Score()
	c.logger.Info("Session finished", "reason", reason, "correct", score.Correct, "total", score.Total)
	c.deps.Telemetry.RecordSessionFinished(ctx, events.SessionFinishedRecord{
		SessionID:  c.id,
		UserID:     c.userID,
		Mode:       c.cfg.Mode,
		Score:      score,
		FinishedAt: c.deps.Now(),
	})
}

// Run delivers ticks until ctx is done.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.Tick(ctx, now)
		}
	}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// State returns a copy of the session state.
func (c *Controller) State() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.QuestionIDs = append([]string(nil), c.state.QuestionIDs...)
	s.Results = append([]models.GradeResult(nil), c.state.Results...)
	return s
}

func (c *Controller) Score() models.Score {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Score()
}

// CurrentQuestionID is the ID at the current index, or "" once finished.
func (c *Controller) CurrentQuestionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.CurrentIndex < len(c.state.QuestionIDs) {
		return c.state.QuestionIDs[c.state.CurrentIndex]
	}
	return ""
}

func loadErrorMessage(err error) string {
	switch {
	case errors.Is(err, qerrors.ErrNotAuthenticated):
		return "Please sign in to load questions."
	case errors.Is(err, qerrors.ErrMalformedQuestion), errors.Is(err, qerrors.ErrNoRenderableContent):
		return "This question could not be displayed. Continue to the next one."
	default:
		return "Failed to load the question. Continue to the next one."
	}
}
