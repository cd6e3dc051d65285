package bank

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

type Handler struct {
	bank   *Bank
	logger utils.Logger
}

func NewHandler(b *Bank, logger utils.Logger) *Handler {
	return &Handler{bank: b, logger: logger}
}

// RegisterRoutes mounts the lookup at /question and /api/question.
func (h *Handler) RegisterRoutes(r gin.IRouter, verifier auth.Verifier) {
	guard := auth.RequireBearer(verifier, h.logger)
	r.GET("/question", guard, h.GetQuestion)
	r.GET("/api/question", guard, h.GetQuestion)
}

// GetQuestion handles GET /question?id=Q12
func (h *Handler) GetQuestion(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing question id"})
		return
	}

	payload, err := h.bank.Lookup(id)
	if err != nil {
		var perr *ParseError
		switch {
		case errors.As(err, &perr):
			h.logger.Error("Question bank unreadable", "error", err)
			// clients key off the error body, not the status
			c.JSON(http.StatusOK, gin.H{"error": "Failed to parse XML", "details": perr.Details})
		case errors.Is(err, qerrors.ErrQuestionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		default:
			h.logger.Error("Question lookup failed", "question_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	h.logger.Debug("Served question", "question_id", id, "type", payload.Type)
	c.JSON(http.StatusOK, payload)
}
