package events

import (
	"context"
	"sync"
	"time"

	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

const defaultPublishTimeout = 5 * time.Second

// Telemetry is the fire-and-forget front of an EventPublisher. Calls return
// immediately; publish errors are logged and dropped. A nil *Telemetry is a
// valid no-op sink.
type Telemetry struct {
	publisher EventPublisher
	logger    utils.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewTelemetry(publisher EventPublisher, logger utils.Logger) *Telemetry {
	return &Telemetry{publisher: publisher, logger: logger, timeout: defaultPublishTimeout}
}

// RecordAnswer emits the answer event, plus a missed-answer alert for wrong
// exam answers.
func (t *Telemetry) RecordAnswer(ctx context.Context, rec AnswerRecord) {
	t.emit(ctx, NewAnswerGradedEvent(rec))
	if rec.Mode == models.ModeExam && !rec.IsCorrect {
		t.emit(ctx, NewExamAnswerMissedEvent(rec))
	}
}

func (t *Telemetry) RecordSessionFinished(ctx context.Context, rec SessionFinishedRecord) {
	t.emit(ctx, NewSessionFinishedEvent(rec))
}

func (t *Telemetry) emit(ctx context.Context, event *Event) {
	if t == nil || t.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				t.logger.Error("Telemetry publisher panicked", "event_type", event.Type, "panic", r)
			}
		}()
		if err := t.publisher.Publish(ctx, event); err != nil {
			t.logger.Warn("Dropping telemetry event", "event_id", event.ID, "event_type", event.Type, "error", err)
		}
	}()
}

// Flush waits for in-flight publishes.
func (t *Telemetry) Flush() {
	if t == nil {
		return
	}
	t.wg.Wait()
}

func (t *Telemetry) Close() error {
	if t == nil || t.publisher == nil {
		return nil
	}
	t.Flush()
	return t.publisher.Close()
}
