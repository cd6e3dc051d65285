package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionMode string

const (
	ModePractice SessionMode = "practice"
	ModeTimed    SessionMode = "timed"
	ModeExam     SessionMode = "exam"
)

// AnswerLog is the persisted telemetry record of one graded question.
type AnswerLog struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	EventID    string      `json:"event_id" gorm:"not null;uniqueIndex;size:64"`
	SessionID  string      `json:"session_id" gorm:"not null;index;size:64"`
	UserID     string      `json:"user_id" gorm:"index;size:128"`
	QuestionID string      `json:"question_id" gorm:"not null;index;size:64"`
	Mode       SessionMode `json:"mode" gorm:"not null;size:16"`
	IsCorrect  bool        `json:"is_correct"`
	TimedOut   bool        `json:"timed_out"`
	DurationMs int64       `json:"duration_ms"`

	SelectedAnswer datatypes.JSON `json:"selected_answer" gorm:"type:jsonb"` // CapturedAnswer

	AnsweredAt time.Time `json:"answered_at" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReportStatus string

const (
	ReportOpen     ReportStatus = "open"
	ReportResolved ReportStatus = "resolved"
)

// QuestionReport is a user complaint about a question (wrong key, missing image...).
type QuestionReport struct {
	ID         uint         `json:"id" gorm:"primaryKey"`
	QuestionID string       `json:"question_id" gorm:"not null;index;size:64" validate:"required"`
	UserID     string       `json:"user_id" gorm:"not null;size:128" validate:"required"`
	UserEmail  string       `json:"user_email" gorm:"size:255"`
	Reason     string       `json:"reason" gorm:"not null;size:1000" validate:"required,max=1000"`
	Status     ReportStatus `json:"status" gorm:"not null;default:'open';size:16"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
