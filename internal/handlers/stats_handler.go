package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
	"github.com/SAP-F-2025/quiz-player/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

type UpdateReportStatusRequest struct {
	Status models.ReportStatus `json:"status" binding:"required,oneof=open resolved"`
}

// StatsHandler exposes the persisted answer logs and question reports.
type StatsHandler struct {
	BaseHandler
	answers repositories.AnswerLogRepository
	reports repositories.QuestionReportRepository
}

func NewStatsHandler(
	answers repositories.AnswerLogRepository,
	reports repositories.QuestionReportRepository,
	logger utils.Logger,
) *StatsHandler {
	return &StatsHandler{
		BaseHandler: NewBaseHandler(logger),
		answers:     answers,
		reports:     reports,
	}
}

// GetHistory lists the caller's graded answers, newest first
// @Router /history [get]
func (h *StatsHandler) GetHistory(c *gin.Context) {
	user, _, ok := h.currentUser(c)
	if !ok {
		return
	}

	filters := repositories.AnswerLogFilters{
		UserID:     user.ID,
		SessionID:  c.Query("session_id"),
		QuestionID: c.Query("question_id"),
		IsCorrect:  parseBoolQuery(c, "correct"),
		Limit:      parseIntQuery(c, "limit", 50),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	if mode := c.Query("mode"); mode != "" {
		m := models.SessionMode(mode)
		filters.Mode = &m
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		filters.DateFrom = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		filters.DateTo = &to
	}

	logs, total, err := h.answers.List(c.Request.Context(), nil, filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to load history", err)
		return
	}
	limit, offset := repositories.NormalizePaging(filters.Limit, filters.Offset)
	c.JSON(http.StatusOK, ListResponse{Items: logs, Total: total, Limit: limit, Offset: offset})
}

// GetQuestionStats aggregates every recorded answer to one question
// @Router /questions/{id}/stats [get]
func (h *StatsHandler) GetQuestionStats(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	stats, err := h.answers.QuestionStats(c.Request.Context(), nil, id)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to load question stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListReports lists question reports
// @Router /reports [get]
func (h *StatsHandler) ListReports(c *gin.Context) {
	filters := repositories.ReportFilters{
		QuestionID: c.Query("question_id"),
		UserID:     c.Query("user_id"),
		Limit:      parseIntQuery(c, "limit", 50),
		Offset:     parseIntQuery(c, "offset", 0),
	}
	if status := c.Query("status"); status != "" {
		s := models.ReportStatus(status)
		filters.Status = &s
	}

	reports, total, err := h.reports.List(c.Request.Context(), nil, filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to list reports", err)
		return
	}
	limit, offset := repositories.NormalizePaging(filters.Limit, filters.Offset)
	c.JSON(http.StatusOK, ListResponse{Items: reports, Total: total, Limit: limit, Offset: offset})
}

// GetReport returns one question report
// @Router /reports/{id} [get]
func (h *StatsHandler) GetReport(c *gin.Context) {
	id := ParseUintIDParam(c, "id")
	if id == 0 {
		return
	}
	rep, err := h.reports.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.respondReportError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// UpdateReportStatus opens or resolves a report
// @Router /reports/{id}/status [put]
func (h *StatsHandler) UpdateReportStatus(c *gin.Context) {
	id := ParseUintIDParam(c, "id")
	if id == 0 {
		return
	}
	var req UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.reports.UpdateStatus(c.Request.Context(), nil, id, req.Status); err != nil {
		h.respondReportError(c, err)
		return
	}
	h.LogRequest(c, "Report status updated", "report_id", id, "status", req.Status)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Report updated"})
}

func (h *StatsHandler) respondReportError(c *gin.Context, err error) {
	if postgres.IsNotFound(err) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Report not found"})
		return
	}
	h.RespondWithError(c, http.StatusInternalServerError, "Failed to load report", err)
}
