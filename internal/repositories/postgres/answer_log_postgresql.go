package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
)

type AnswerLogPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerLogPostgreSQL(db *gorm.DB) repositories.AnswerLogRepository {
	return &AnswerLogPostgreSQL{db: db}
}

func (a *AnswerLogPostgreSQL) Create(ctx context.Context, tx *gorm.DB, log *models.AnswerLog) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(log).Error
}

func (a *AnswerLogPostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID string) ([]*models.AnswerLog, error) {
	db := a.getDB(tx)
	var logs []*models.AnswerLog
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("answered_at ASC").
		Find(&logs).Error
	return logs, err
}

// List retrieves answer logs with filters
func (a *AnswerLogPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AnswerLogFilters) ([]*models.AnswerLog, int64, error) {
	db := a.getDB(tx)
	query := db.WithContext(ctx).Model(&models.AnswerLog{})

	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.SessionID != "" {
		query = query.Where("session_id = ?", filters.SessionID)
	}
	if filters.QuestionID != "" {
		query = query.Where("question_id = ?", filters.QuestionID)
	}
	if filters.Mode != nil {
		query = query.Where("mode = ?", *filters.Mode)
	}
	if filters.IsCorrect != nil {
		query = query.Where("is_correct = ?", *filters.IsCorrect)
	}
	if filters.DateFrom != nil {
		query = query.Where("answered_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("answered_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := repositories.NormalizePaging(filters.Limit, filters.Offset)
	var logs []*models.AnswerLog
	err := query.Order("answered_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (a *AnswerLogPostgreSQL) QuestionStats(ctx context.Context, tx *gorm.DB, questionID string) (*repositories.QuestionStats, error) {
	db := a.getDB(tx)
	stats := &repositories.QuestionStats{QuestionID: questionID}
	err := db.WithContext(ctx).Model(&models.AnswerLog{}).
		Select("COUNT(*) AS attempts, "+
			"COUNT(*) FILTER (WHERE is_correct) AS correct, "+
			"COUNT(*) FILTER (WHERE timed_out) AS timed_out, "+
			"COALESCE(AVG(duration_ms), 0) AS avg_duration_ms").
		Where("question_id = ?", questionID).
		Scan(stats).Error
	if err != nil {
		return nil, err
	}
	if stats.Attempts > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Attempts)
	}
	return stats, nil
}

func (a *AnswerLogPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
