package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
)

type QuestionReportPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionReportPostgreSQL(db *gorm.DB) repositories.QuestionReportRepository {
	return &QuestionReportPostgreSQL{db: db}
}

func (r *QuestionReportPostgreSQL) Create(ctx context.Context, tx *gorm.DB, report *models.QuestionReport) error {
	db := r.getDB(tx)
	if report.Status == "" {
		report.Status = models.ReportOpen
	}
	return db.WithContext(ctx).Create(report).Error
}

func (r *QuestionReportPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.QuestionReport, error) {
	db := r.getDB(tx)
	var report models.QuestionReport
	if err := db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *QuestionReportPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.QuestionReport, int64, error) {
	db := r.getDB(tx)
	query := db.WithContext(ctx).Model(&models.QuestionReport{})

	if filters.QuestionID != "" {
		query = query.Where("question_id = ?", filters.QuestionID)
	}
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := repositories.NormalizePaging(filters.Limit, filters.Offset)
	var reports []*models.QuestionReport
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *QuestionReportPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ReportStatus) error {
	db := r.getDB(tx)
	res := db.WithContext(ctx).Model(&models.QuestionReport{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuestionReportPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// IsNotFound reports a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
