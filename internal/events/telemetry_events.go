package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

// EventType represents different types of telemetry events
type EventType string

const (
	EventAnswerGraded     EventType = "answer.graded"
	EventExamAnswerMissed EventType = "exam.answer_missed"
	EventSessionFinished  EventType = "session.finished"
)

const (
	eventSource  = "quiz-player"
	eventVersion = "1.0"

	MetricAnswerAccuracy = "answer_accuracy"
)

// Event is the envelope for everything published to the telemetry topic.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AnswerRecord is the per-question telemetry payload.
type AnswerRecord struct {
	QuestionID     string                `json:"questionId"`
	SelectedAnswer models.CapturedAnswer `json:"selectedAnswer"`
	IsCorrect      bool                  `json:"isCorrect"`
	TimedOut       bool                  `json:"timedOut"`
	Mode           models.SessionMode    `json:"mode"`
	DurationMs     int64                 `json:"durationMs"`
	SessionID      string                `json:"sessionId"`
	UserID         string                `json:"userId,omitempty"`
	Timestamp      time.Time             `json:"timestamp"`
	Tags           []string              `json:"tags,omitempty"`
	Metric         string                `json:"metric,omitempty"`
}

type SessionFinishedRecord struct {
	SessionID  string             `json:"sessionId"`
	UserID     string             `json:"userId,omitempty"`
	Mode       models.SessionMode `json:"mode"`
	Score      models.Score       `json:"score"`
	FinishedAt time.Time          `json:"finishedAt"`
}

func newEvent(t EventType, at time.Time, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: at,
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// NewAnswerGradedEvent wraps a record, filling in tags and the metric name.
func NewAnswerGradedEvent(rec AnswerRecord) *Event {
	if rec.Tags == nil {
		rec.Tags = []string{"ccna", string(rec.Mode)}
	}
	if rec.Metric == "" {
		rec.Metric = MetricAnswerAccuracy
	}
	return newEvent(EventAnswerGraded, rec.Timestamp, rec)
}

// NewExamAnswerMissedEvent is raised for every wrong or timed-out exam answer.
func NewExamAnswerMissedEvent(rec AnswerRecord) *Event {
	e := newEvent(EventExamAnswerMissed, rec.Timestamp, rec)
	e.Metadata = map[string]interface{}{"level": "alert"}
	return e
}

func NewSessionFinishedEvent(rec SessionFinishedRecord) *Event {
	return newEvent(EventSessionFinished, rec.FinishedAt, rec)
}
