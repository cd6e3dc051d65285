package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
)

// DatabaseEventPublisher stores answer events as answer log rows. Other
// event types are accepted and ignored.
type DatabaseEventPublisher struct {
	repo repositories.AnswerLogRepository
}

func NewDatabaseEventPublisher(repo repositories.AnswerLogRepository) *DatabaseEventPublisher {
	return &DatabaseEventPublisher{repo: repo}
}

func (d *DatabaseEventPublisher) Publish(ctx context.Context, event *Event) error {
	if event.Type != EventAnswerGraded {
		return nil
	}
	rec, ok := event.Data.(AnswerRecord)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Data, event.Type)
	}
	selected, err := json.Marshal(rec.SelectedAnswer)
	if err != nil {
		return fmt.Errorf("failed to marshal selected answer: %w", err)
	}
	return d.repo.Create(ctx, nil, &models.AnswerLog{
		EventID:        event.ID,
		SessionID:      rec.SessionID,
		UserID:         rec.UserID,
		QuestionID:     rec.QuestionID,
		Mode:           rec.Mode,
		IsCorrect:      rec.IsCorrect,
		TimedOut:       rec.TimedOut,
		DurationMs:     rec.DurationMs,
		SelectedAnswer: selected,
		AnsweredAt:     rec.Timestamp,
	})
}

func (d *DatabaseEventPublisher) Close() error {
	return nil
}

// FanOutPublisher publishes every event to all of its publishers.
type FanOutPublisher []EventPublisher

func (f FanOutPublisher) Publish(ctx context.Context, event *Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f FanOutPublisher) Close() error {
	var errs []error
	for _, p := range f {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
