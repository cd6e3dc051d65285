package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	"github.com/SAP-F-2025/quiz-player/internal/capture"
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/events"
	"github.com/SAP-F-2025/quiz-player/internal/grader"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/normalizer"
	"github.com/SAP-F-2025/quiz-player/internal/questionclient"
	"github.com/SAP-F-2025/quiz-player/internal/store"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
	"github.com/SAP-F-2025/quiz-player/internal/validator"
)

// fakeFetcher serves canned payloads; unknown IDs get a true/false question.
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[string]string
	calls    int
	// when set, the first call blocks until release is closed and returns stale
	entered chan struct{}
	release chan struct{}
	stale   string
}

func (f *fakeFetcher) Fetch(ctx context.Context, id string) (*models.RawQuestion, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	body, ok := f.payloads[id]
	f.mu.Unlock()

	if call == 1 && f.release != nil {
		close(f.entered)
		<-f.release
		body = f.stale
	} else if !ok {
		body = fmt.Sprintf(`{"id":%q,"type":"truefalse","text":"Statement %s","correct":true}`, id, id)
	}
	if body == "" {
		return nil, &qerrors.FetchError{Status: 500, Err: fmt.Errorf("boom")}
	}
	var raw models.RawQuestion
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type fixture struct {
	ctrl    *Controller
	store   *store.MemoryStore
	fetcher *fakeFetcher
	clock   *clock
	pub     *events.MockEventPublisher
	tel     *events.Telemetry
}

func newFixture(t *testing.T, cfg ModeConfig, poolSize int, payloads map[string]string) *fixture {
	t.Helper()
	logger := utils.NewNopLogger()
	st := store.NewMemoryStore()
	clk := &clock{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	pub := events.NewMockEventPublisher(utils.ToSlogLogger(logger))
	tel := events.NewTelemetry(pub, logger)

	sampler := NewSampler(poolSize, nil, st, logger)
	sampler.shuffle = func(int, func(i, j int)) {}

	f := &fixture{
		store:   st,
		fetcher: &fakeFetcher{payloads: payloads},
		clock:   clk,
		pub:     pub,
		tel:     tel,
	}
	f.ctrl = NewController("s-1", "user-1", cfg, Deps{
		Fetcher:    f.fetcher,
		Normalizer: normalizer.New(validator.New(), logger),
		Grader:     grader.New(st, logger, grader.WithClock(clk.Now)),
		Sampler:    sampler,
		Telemetry:  tel,
		Logger:     logger,
		Shuffle:    func(int, func(i, j int)) {},
		Now:        clk.Now,
	})
	return f
}

func (f *fixture) awaitLoad(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.ctrl.AwaitLoad(ctx))
}

func boolPtr(b bool) *bool { return &b }

func choose(v bool) capture.Action { return capture.Action{Kind: capture.ActionChoose, Value: boolPtr(v)} }

func TestController_EndToEnd(t *testing.T) {
	f := newFixture(t, Practice(3), 3, map[string]string{
		"Q1": `{"id":"Q1","type":"truefalse","text":"OSPF is a link-state protocol","correct":true}`,
		"Q2": `{"id":"Q2","type":"multichoice","text":"Pick","options":["A","B","C"],"correctIndexes":[0,2]}`,
		"Q3": `{"id":"Q3","type":"truefalse","text":"RIP uses TCP","correct":false}`,
	})
	ctx := context.Background()
	c := f.ctrl

	require.NoError(t, c.Start(ctx))
	f.awaitLoad(t)
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())
	assert.Equal(t, "Question 1 of 3", c.View().Progress.Label)

	require.NoError(t, c.Apply(choose(true)))
	require.NoError(t, c.Submit(ctx))
	assert.Equal(t, PhaseGraded, c.Phase())
	assert.True(t, c.View().Feedback.Correct)
	require.NoError(t, c.Next(ctx))
	f.awaitLoad(t)

	require.NoError(t, c.Apply(capture.Action{Kind: capture.ActionToggle, Index: 0}))
	require.NoError(t, c.Apply(capture.Action{Kind: capture.ActionToggle, Index: 2}))
	require.NoError(t, c.Submit(ctx))
	require.NoError(t, c.Next(ctx))
	f.awaitLoad(t)

	require.NoError(t, c.Apply(choose(true)))
	require.NoError(t, c.Submit(ctx))
	require.NoError(t, c.Next(ctx))

	assert.Equal(t, PhaseFinished, c.Phase())
	score := c.Score()
	assert.Equal(t, 2, score.Correct)
	assert.Equal(t, 3, score.Total)

	v := c.View()
	require.NotNil(t, v.Score)
	assert.Equal(t, "completed", v.EndReason)
	assert.Nil(t, v.Question)

	ids, err := f.store.Incorrect(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q3"}, ids)

	assert.ErrorIs(t, c.Submit(ctx), qerrors.ErrSessionFinished)
	assert.ErrorIs(t, c.Apply(choose(true)), qerrors.ErrSessionFinished)

	f.tel.Flush()
	var graded, finished int
	for _, e := range f.pub.GetPublishedEvents() {
		switch e.Type {
		case events.EventAnswerGraded:
			graded++
		case events.EventSessionFinished:
			finished++
		}
	}
	assert.Equal(t, 3, graded)
	assert.Equal(t, 1, finished)
}

func TestController_TimeoutIsIdempotent(t *testing.T) {
	f := newFixture(t, Timed(2), 2, nil)
	ctx := context.Background()
	c := f.ctrl

	require.NoError(t, c.Start(ctx))
	f.awaitLoad(t)

	st := c.State()
	require.NotNil(t, st.PerQuestionDeadline)
	deadline := *st.PerQuestionDeadline

	c.Tick(ctx, deadline.Add(-time.Second))
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())

	for i := 0; i < 5; i++ {
		c.Tick(ctx, deadline.Add(time.Duration(i)*100*time.Millisecond))
	}
	assert.Equal(t, PhaseGraded, c.Phase())

	results := c.State().Results
	require.Len(t, results, 1)
	assert.False(t, results[0].Correct)
	assert.True(t, results[0].TimedOut)

	ids, err := f.store.Incorrect(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, ids)

	assert.ErrorIs(t, c.Submit(ctx), qerrors.ErrAlreadySubmitted)

	// the timed-out question advances on its own once feedback has shown
	c.Tick(ctx, deadline.Add(timeoutAdvanceDelay))
	f.awaitLoad(t)
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())
	assert.Equal(t, "Q2", c.CurrentQuestionID())
	assert.Len(t, c.State().Results, 1)
}

func TestController_DoubleSubmitYieldsOneResult(t *testing.T) {
	tests := []struct {
		name        string
		tickFirst   bool
		wantTimeout bool
	}{
		{"manual then timer", false, false},
		{"timer then manual", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Timed(1), 1, nil)
			ctx := context.Background()
			c := f.ctrl
			require.NoError(t, c.Start(ctx))
			f.awaitLoad(t)
			require.NoError(t, c.Apply(choose(true)))

			deadline := *c.State().PerQuestionDeadline
			if tt.tickFirst {
				c.Tick(ctx, deadline)
				assert.ErrorIs(t, c.Submit(ctx), qerrors.ErrAlreadySubmitted)
			} else {
				require.NoError(t, c.Submit(ctx))
				c.Tick(ctx, deadline)
			}

			results := c.State().Results
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantTimeout, results[0].TimedOut)
			assert.Equal(t, !tt.wantTimeout, results[0].Correct)
		})
	}
}

func TestController_ConcurrentSubmitAndTick(t *testing.T) {
	f := newFixture(t, Timed(1), 1, nil)
	ctx := context.Background()
	c := f.ctrl
	require.NoError(t, c.Start(ctx))
	f.awaitLoad(t)
	deadline := *c.State().PerQuestionDeadline

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = c.Submit(ctx) }()
		go func() { defer wg.Done(); c.Tick(ctx, deadline) }()
	}
	wg.Wait()
	assert.Len(t, c.State().Results, 1)
}

func TestController_LoadFailureNeedsManualAdvance(t *testing.T) {
	f := newFixture(t, Timed(2), 2, map[string]string{
		"Q1": `{"id":"Q1","type":"drag-into-text","text":"Fill [[1]] and [[2]]","items":[{"text":"alpha","group":"1"}]}`,
	})
	ctx := context.Background()
	c := f.ctrl
	require.NoError(t, c.Start(ctx))
	f.awaitLoad(t)

	v := c.View()
	assert.Equal(t, PhaseLoading, v.Phase)
	assert.NotEmpty(t, v.LoadError)
	assert.True(t, v.CanAdvance)
	assert.Nil(t, v.Question)

	// no countdown runs and nothing advances on its own
	c.Tick(ctx, f.clock.Advance(time.Hour))
	assert.Equal(t, PhaseLoading, c.Phase())
	assert.Equal(t, "Q1", c.CurrentQuestionID())
	assert.ErrorIs(t, c.Submit(ctx), qerrors.ErrInvalidState)

	require.NoError(t, c.Next(ctx))
	f.awaitLoad(t)
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())
	assert.Empty(t, c.State().Results)
}

func TestController_FetchFailure(t *testing.T) {
	f := newFixture(t, Practice(1), 1, map[string]string{"Q1": ""})
	c := f.ctrl
	require.NoError(t, c.Start(context.Background()))
	f.awaitLoad(t)
	assert.Equal(t, "Failed to load the question. Continue to the next one.", c.View().LoadError)
	require.NoError(t, c.Next(context.Background()))
	assert.Equal(t, PhaseFinished, c.Phase())
	assert.Equal(t, 0, c.Score().Correct)
}

func TestController_StaleLoadIsDiscarded(t *testing.T) {
	f := newFixture(t, Practice(1), 1, nil)
	f.fetcher.entered = make(chan struct{})
	f.fetcher.release = make(chan struct{})
	f.fetcher.stale = `{"id":"STALE","type":"truefalse","text":"old","correct":true}`
	ctx := context.Background()
	c := f.ctrl

	require.NoError(t, c.Start(ctx))
	<-f.fetcher.entered
	c.mu.Lock()
	staleDone := c.loadDone
	c.mu.Unlock()

	require.NoError(t, c.Restart(ctx))
	f.awaitLoad(t)
	assert.Equal(t, PhaseAwaitingAnswer, c.Phase())

	close(f.fetcher.release)
	<-staleDone

	v := c.View()
	require.NotNil(t, v.Question)
	assert.Equal(t, "Q1", v.Question.QuestionID)
	assert.Equal(t, PhaseAwaitingAnswer, v.Phase)
}

func TestController_ExamClockEndsSession(t *testing.T) {
	f := newFixture(t, Exam(), 80, nil)
	ctx := context.Background()
	c := f.ctrl

	require.NoError(t, c.Start(ctx))
	f.awaitLoad(t)
	assert.Len(t, c.State().QuestionIDs, examQuestionCount)

	// exam advances straight after a submit
	require.NoError(t, c.Apply(choose(true)))
	require.NoError(t, c.Submit(ctx))
	assert.Equal(t, PhaseLoading, c.Phase())
	f.awaitLoad(t)
	assert.Equal(t, "Q2", c.CurrentQuestionID())

	c.Tick(ctx, f.clock.Advance(examTimeLimit))
	assert.Equal(t, PhaseFinished, c.Phase())
	v := c.View()
	assert.Equal(t, "time expired", v.EndReason)
	assert.Equal(t, 1, v.Score.Correct)
	assert.Equal(t, examQuestionCount, v.Score.Total)
	assert.Nil(t, v.Progress.SessionRemainingMs)
}

func TestController_RestartKeepsIncorrectSet(t *testing.T) {
	f := newFixture(t, Practice(1), 1, nil)
	ctx := context.Background()
	c := f.ctrl

	require.NoError(t, c.Start(ctx))
	f.awaitLoad(t)
	require.NoError(t, c.Apply(choose(false)))
	require.NoError(t, c.Submit(ctx))

	require.NoError(t, c.Restart(ctx))
	f.awaitLoad(t)
	assert.Empty(t, c.State().Results)
	assert.Equal(t, 0, c.State().CurrentIndex)

	ids, err := f.store.Incorrect(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, ids)
}

func TestController_StartTwice(t *testing.T) {
	f := newFixture(t, Practice(1), 1, nil)
	require.NoError(t, f.ctrl.Start(context.Background()))
	assert.ErrorIs(t, f.ctrl.Start(context.Background()), qerrors.ErrInvalidState)
	f.awaitLoad(t)
}

func TestSampler(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	s := NewSampler(300, []string{"Q238", "Q277"}, st, utils.NewNopLogger())
	assert.Equal(t, 298, s.PoolSize())

	small := NewSampler(10, nil, st, utils.NewNopLogger())
	first, err := small.Sample(ctx, "u", 4, true)
	require.NoError(t, err)
	require.Len(t, first, 4)

	second, err := small.Sample(ctx, "u", 4, true)
	require.NoError(t, err)
	for _, id := range second {
		assert.NotContains(t, first, id)
	}

	// not enough fresh IDs left: the whole pool is used
	third, err := small.Sample(ctx, "u", 8, true)
	require.NoError(t, err)
	assert.Len(t, third, 8)

	recent, err := st.Recent(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, third, recent)

	all, err := small.Sample(ctx, "u", 50, false)
	require.NoError(t, err)
	assert.Len(t, all, 10)

	excluded, err := s.Sample(ctx, "x", 298, false)
	require.NoError(t, err)
	assert.NotContains(t, excluded, "Q238")
	assert.NotContains(t, excluded, "Q277")
}

func TestConfigFor(t *testing.T) {
	cfg, err := ConfigFor(models.ModeExam, 5)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.QuestionCount)
	assert.Equal(t, 20*time.Minute, cfg.SessionLimit)
	assert.True(t, cfg.AdvanceOnSubmit)

	cfg, err = ConfigFor(models.ModeTimed, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPracticeCount, cfg.QuestionCount)
	assert.Equal(t, 30*time.Second, cfg.PerQuestionLimit)

	cfg, err = ConfigFor(models.ModePractice, 1000)
	require.NoError(t, err)
	assert.False(t, cfg.Timed())
	assert.Equal(t, MaxQuestionCount, cfg.QuestionCount)

	_, err = ConfigFor("speedrun", 1)
	assert.Error(t, err)
}

func TestManager(t *testing.T) {
	logger := utils.NewNopLogger()
	st := store.NewMemoryStore()
	var factoryCalls int
	m := NewManager(Deps{
		Normalizer: normalizer.New(validator.New(), logger),
		Grader:     grader.New(st, logger),
		Sampler:    NewSampler(5, nil, st, logger),
		Logger:     logger,
	}, func(creds auth.CredentialProvider) questionclient.Fetcher {
		factoryCalls++
		return &fakeFetcher{}
	}, time.Hour)
	defer m.Close()

	owner := &auth.User{ID: "owner"}
	ctrl, err := m.Create(context.Background(), owner, "tok", "", Practice(2))
	require.NoError(t, err)
	assert.Equal(t, 1, factoryCalls)
	require.NoError(t, ctrl.AwaitLoad(context.Background()))

	got, err := m.Get(ctrl.ID(), owner, "tok2")
	require.NoError(t, err)
	assert.Same(t, ctrl, got)

	_, err = m.Get(ctrl.ID(), &auth.User{ID: "intruder"}, "tok")
	assert.ErrorIs(t, err, qerrors.ErrSessionNotFound)

	_, err = m.Create(context.Background(), nil, "", "", Practice(1))
	assert.ErrorIs(t, err, qerrors.ErrNotAuthenticated)

	assert.Equal(t, 0, m.Sweep(time.Hour))
	require.NoError(t, m.Remove(ctrl.ID(), owner))
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, m.Remove(ctrl.ID(), owner), qerrors.ErrSessionNotFound)
}

func TestReviewer(t *testing.T) {
	ctx := context.Background()
	logger := utils.NewNopLogger()
	st := store.NewMemoryStore()
	r := NewReviewer(st, normalizer.New(validator.New(), logger))
	fetcher := &fakeFetcher{payloads: map[string]string{
		"Q9": `{"id":"Q9","type":"multichoice","text":"Pick","options":["A","B","C"],"correctIndexes":[1]}`,
	}}

	ids, err := r.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = r.Load(ctx, fetcher, "u", "Q9")
	assert.ErrorIs(t, err, qerrors.ErrQuestionNotFound)

	_, err = st.AddIncorrect(ctx, "u", "Q9")
	require.NoError(t, err)
	item, err := r.Load(ctx, fetcher, "u", "Q9")
	require.NoError(t, err)
	assert.True(t, item.Question.Locked)
	assert.Equal(t, []string{"B"}, item.CorrectAnswer)

	require.NoError(t, r.Remove(ctx, "u", "Q9"))
	ids, err = r.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.Equal(t, "anonymous", Scope(""))
	assert.Equal(t, "u", Scope("u"))
}
