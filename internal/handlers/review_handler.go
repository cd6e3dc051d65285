package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	"github.com/SAP-F-2025/quiz-player/internal/session"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// ReviewHandler serves the caller's incorrect-question list.
type ReviewHandler struct {
	BaseHandler
	reviewer   *session.Reviewer
	newFetcher session.FetcherFactory
}

func NewReviewHandler(reviewer *session.Reviewer, newFetcher session.FetcherFactory, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler: NewBaseHandler(logger),
		reviewer:    reviewer,
		newFetcher:  newFetcher,
	}
}

// ListIncorrect returns the IDs the caller has answered wrong
// @Router /review [get]
func (h *ReviewHandler) ListIncorrect(c *gin.Context) {
	user, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	ids, err := h.reviewer.List(c.Request.Context(), session.Scope(user.ID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"questionIds": ids})
}

// GetQuestion loads one missed question read-only with its correct answer
// @Router /review/{questionId} [get]
func (h *ReviewHandler) GetQuestion(c *gin.Context) {
	user, token, ok := h.currentUser(c)
	if !ok {
		return
	}
	questionID := ParseStringIDParam(c, "questionId")
	if questionID == "" {
		return
	}

	fetcher := h.newFetcher(auth.NewStaticProvider(user, token))
	item, err := h.reviewer.Load(c.Request.Context(), fetcher, session.Scope(user.ID), questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// RemoveQuestion drops one ID from the incorrect set
// @Router /review/{questionId} [delete]
func (h *ReviewHandler) RemoveQuestion(c *gin.Context) {
	user, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	questionID := ParseStringIDParam(c, "questionId")
	if questionID == "" {
		return
	}
	if err := h.reviewer.Remove(c.Request.Context(), session.Scope(user.ID), questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearIncorrect empties the incorrect set
// @Router /review [delete]
func (h *ReviewHandler) ClearIncorrect(c *gin.Context) {
	user, _, ok := h.currentUser(c)
	if !ok {
		return
	}
	if err := h.reviewer.Clear(c.Request.Context(), session.Scope(user.ID)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Incorrect set cleared")
	c.Status(http.StatusNoContent)
}
