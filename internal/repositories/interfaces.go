package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-player/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AnswerLogFilters struct {
	UserID     string              `json:"user_id"`
	SessionID  string              `json:"session_id"`
	QuestionID string              `json:"question_id"`
	Mode       *models.SessionMode `json:"mode"`
	IsCorrect  *bool               `json:"is_correct"`
	DateFrom   *time.Time          `json:"date_from"`
	DateTo     *time.Time          `json:"date_to"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

type ReportFilters struct {
	QuestionID string               `json:"question_id"`
	UserID     string               `json:"user_id"`
	Status     *models.ReportStatus `json:"status"`
	Limit      int                  `json:"limit"`
	Offset     int                  `json:"offset"`
}

// QuestionStats aggregates answer logs for one question.
type QuestionStats struct {
	QuestionID    string  `json:"question_id"`
	Attempts      int64   `json:"attempts"`
	Correct       int64   `json:"correct"`
	TimedOut      int64   `json:"timed_out"`
	Accuracy      float64 `json:"accuracy"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// AnswerLogRepository persists telemetry records. Create is idempotent on
// EventID so a redelivered event is stored once.
type AnswerLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, log *models.AnswerLog) error
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.AnswerLog, error)
	List(ctx context.Context, tx *gorm.DB, filters AnswerLogFilters) ([]*models.AnswerLog, int64, error)
	QuestionStats(ctx context.Context, tx *gorm.DB, questionID string) (*QuestionStats, error)
}

type QuestionReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.QuestionReport) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuestionReport, error)
	List(ctx context.Context, tx *gorm.DB, filters ReportFilters) ([]*models.QuestionReport, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ReportStatus) error
}

// NormalizePaging applies the list defaults used by every repository.
func NormalizePaging(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
