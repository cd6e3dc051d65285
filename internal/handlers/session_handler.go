package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	"github.com/SAP-F-2025/quiz-player/internal/capture"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/report"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
	"github.com/SAP-F-2025/quiz-player/internal/session"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
	"github.com/SAP-F-2025/quiz-player/internal/validator"
)

const defaultLoadWait = 2 * time.Second

type CreateSessionRequest struct {
	Mode         models.SessionMode `json:"mode" validate:"omitempty,session_mode"`
	Count        int                `json:"count" validate:"gte=0,lte=100"`
	RefreshToken string             `json:"refreshToken"`
}

// RefreshTokenHeader carries the refresh token when the body has none.
const RefreshTokenHeader = "X-Refresh-Token"

type ReportQuestionRequest struct {
	QuestionID string `json:"questionId" validate:"omitempty,question_id"`
	Reason     string `json:"reason" validate:"required,max=1000"`
}

// SummaryResponse is the end-of-session payload.
type SummaryResponse struct {
	View    session.View         `json:"view"`
	Score   models.Score         `json:"score"`
	Results []models.GradeResult `json:"results"`
}

type SessionHandler struct {
	BaseHandler
	manager   *session.Manager
	validator *validator.Validator
	reports   repositories.QuestionReportRepository
	loadWait  time.Duration
}

// NewSessionHandler wires the session routes. reports may be nil when no
// database is configured; question reports are then rejected.
func NewSessionHandler(
	manager *session.Manager,
	validator *validator.Validator,
	reports repositories.QuestionReportRepository,
	logger utils.Logger,
) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		manager:     manager,
		validator:   validator,
		reports:     reports,
		loadWait:    defaultLoadWait,
	}
}

// CreateSession starts a practice, timed or exam session
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	user, token, ok := h.currentUser(c)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
			return
		}
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	cfg, err := session.ConfigFor(req.Mode, req.Count)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid mode", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Starting session", "mode", cfg.Mode, "count", cfg.QuestionCount)
	refresh := req.RefreshToken
	if refresh == "" {
		refresh = c.GetHeader(RefreshTokenHeader)
	}
	ctrl, err := h.manager.Create(c.Request.Context(), user, token, refresh, cfg)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.waitForLoad(c.Request.Context(), ctrl)

	c.JSON(http.StatusCreated, ctrl.View())
}

// GetSession returns the current view
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}

// DeleteSession abandons a session
// @Router /sessions/{id} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	user, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	if err := h.manager.Remove(id, user); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApplyAction forwards one interaction to the current question
// @Router /sessions/{id}/actions [post]
func (h *SessionHandler) ApplyAction(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}

	var action capture.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := ctrl.Apply(action); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}

// Submit grades the current answer
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := ctrl.Submit(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	if ctrl.Config().AdvanceOnSubmit {
		h.waitForLoad(c.Request.Context(), ctrl)
	}
	c.JSON(http.StatusOK, ctrl.View())
}

// Next advances past a graded or unloadable question
// @Router /sessions/{id}/next [post]
func (h *SessionHandler) Next(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := ctrl.Next(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.waitForLoad(c.Request.Context(), ctrl)
	c.JSON(http.StatusOK, ctrl.View())
}

// Restart resamples and starts over; the incorrect set is kept
// @Router /sessions/{id}/restart [post]
func (h *SessionHandler) Restart(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := ctrl.Restart(c.Request.Context()); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.waitForLoad(c.Request.Context(), ctrl)
	c.JSON(http.StatusOK, ctrl.View())
}

// GetSummary returns the score and per-question results
// @Router /sessions/{id}/summary [get]
func (h *SessionHandler) GetSummary(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	state := ctrl.State()
	c.JSON(http.StatusOK, SummaryResponse{
		View:    ctrl.View(),
		Score:   state.Score(),
		Results: state.Results,
	})
}

// DownloadReport streams the session results as a spreadsheet
// @Router /sessions/{id}/report.xlsx [get]
func (h *SessionHandler) DownloadReport(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}

	data, err := report.SessionWorkbook(report.Session{
		SessionID:   ctrl.ID(),
		UserID:      ctrl.UserID(),
		Mode:        ctrl.Config().Mode,
		EndReason:   ctrl.View().EndReason,
		GeneratedAt: time.Now(),
		State:       ctrl.State(),
	})
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to build report", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="session-%s.xlsx"`, ctrl.ID()))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ReportQuestion files a complaint about a question
// @Router /sessions/{id}/report-question [post]
func (h *SessionHandler) ReportQuestion(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	if h.reports == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Question reports are not enabled"})
		return
	}

	var req ReportQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if req.QuestionID == "" {
		req.QuestionID = ctrl.CurrentQuestionID()
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	if req.QuestionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "No question to report"})
		return
	}

	rep := &models.QuestionReport{
		QuestionID: req.QuestionID,
		UserID:     ctrl.UserID(),
		UserEmail:  auth.UserFromContext(c).Email,
		Reason:     req.Reason,
	}
	if err := h.reports.Create(c.Request.Context(), nil, rep); err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to save report", err)
		return
	}
	h.LogRequest(c, "Question reported", "question_id", rep.QuestionID, "report_id", rep.ID)
	c.JSON(http.StatusCreated, rep)
}

func (h *SessionHandler) lookup(c *gin.Context) (*session.Controller, bool) {
	user, token, ok := h.currentUser(c)
	if !ok {
		return nil, false
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return nil, false
	}
	ctrl, err := h.manager.Get(id, user, token)
	if err != nil {
		h.handleServiceError(c, err)
		return nil, false
	}
	return ctrl, true
}

// waitForLoad gives the question load a moment so the response usually
// carries the rendered question. Clients poll GET otherwise.
func (h *SessionHandler) waitForLoad(ctx context.Context, ctrl *session.Controller) {
	ctx, cancel := context.WithTimeout(ctx, h.loadWait)
	defer cancel()
	if err := ctrl.AwaitLoad(ctx); err != nil {
		h.logger.Debug("Question still loading", "session_id", ctrl.ID(), "error", err)
	}
}
