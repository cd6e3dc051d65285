package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps a page of results
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"timestamp", time.Now().Format(time.RFC3339),
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := h.contextFields(c)
	fields = append(fields, additionalFields...)
	h.requestLogger(c).LogError(err, message, fields...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := h.contextFields(c)
	fields = append(fields, additionalFields...)
	h.requestLogger(c).Warn(message, fields...)
}

func (h *BaseHandler) LogDebug(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := h.contextFields(c)
	fields = append(fields, additionalFields...)
	h.requestLogger(c).Debug(message, fields...)
}

func (h *BaseHandler) contextFields(c *gin.Context) []interface{} {
	return []interface{}{"user_id", h.extractUserID(c)}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.RequestLogger(c, h.logger)
}

// Helper method to extract user ID from context
func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get(auth.ContextUserID); exists {
		return userID
	}
	return nil
}

// currentUser returns the authenticated caller and the token it presented,
// answering 401 when there is none.
func (h *BaseHandler) currentUser(c *gin.Context) (*auth.User, string, bool) {
	user := auth.UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return nil, "", false
	}
	return user, c.GetString(auth.ContextTokenKey), true
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{Message: message}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.LogWarn(c, message, "status_code", statusCode)
	}

	c.JSON(statusCode, errorResp)
}

// handleServiceError maps domain errors onto HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors qerrors.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, qerrors.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Session not found", Code: "session_not_found"})
	case errors.Is(err, qerrors.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found", Code: "question_not_found"})
	case errors.Is(err, qerrors.ErrSessionFinished):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Session already finished", Code: "session_finished"})
	case errors.Is(err, qerrors.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Answer already submitted", Code: "already_submitted"})
	case errors.Is(err, qerrors.ErrInputLocked):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Answer input is locked", Code: "input_locked"})
	case errors.Is(err, qerrors.ErrInvalidState):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Action not allowed now", Code: "invalid_state"})
	case errors.Is(err, qerrors.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid action", Details: err.Error(), Code: "invalid_action"})
	case errors.Is(err, qerrors.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated", Code: "not_authenticated"})
	case errors.Is(err, qerrors.ErrMalformedQuestion), errors.Is(err, qerrors.ErrNoRenderableContent):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: "Question could not be displayed", Details: err.Error(), Code: "question_unusable"})
	case errors.Is(err, qerrors.ErrFetchFailed):
		h.LogError(c, err, "Question service request failed")
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "Question service unavailable", Code: "fetch_failed"})
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
