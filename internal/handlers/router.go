package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
	"github.com/SAP-F-2025/quiz-player/internal/session"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
	"github.com/SAP-F-2025/quiz-player/internal/validator"
)

// Dependencies are the services the HTTP layer is built on. AnswerLogs and
// Reports are nil when no database is configured.
type Dependencies struct {
	Manager    *session.Manager
	Reviewer   *session.Reviewer
	NewFetcher session.FetcherFactory
	Verifier   auth.Verifier
	Validator  *validator.Validator
	AnswerLogs repositories.AnswerLogRepository
	Reports    repositories.QuestionReportRepository
	Logger     utils.Logger
}

type HandlerManager struct {
	sessionHandler *SessionHandler
	reviewHandler  *ReviewHandler
	statsHandler   *StatsHandler
	verifier       auth.Verifier
	logger         utils.Logger
}

func NewHandlerManager(deps Dependencies) *HandlerManager {
	hm := &HandlerManager{
		sessionHandler: NewSessionHandler(deps.Manager, deps.Validator, deps.Reports, deps.Logger),
		reviewHandler:  NewReviewHandler(deps.Reviewer, deps.NewFetcher, deps.Logger),
		verifier:       deps.Verifier,
		logger:         deps.Logger,
	}
	if deps.AnswerLogs != nil && deps.Reports != nil {
		hm.statsHandler = NewStatsHandler(deps.AnswerLogs, deps.Reports, deps.Logger)
	}
	return hm
}

// CORS builds the cross-origin middleware. A "*" entry allows any origin
// without credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", RefreshTokenHeader},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(auth.RequireBearer(hm.verifier, hm.logger))
	{
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
			sessions.DELETE("/:id", hm.sessionHandler.DeleteSession)
			sessions.POST("/:id/actions", hm.sessionHandler.ApplyAction)
			sessions.POST("/:id/submit", hm.sessionHandler.Submit)
			sessions.POST("/:id/next", hm.sessionHandler.Next)
			sessions.POST("/:id/restart", hm.sessionHandler.Restart)
			sessions.GET("/:id/summary", hm.sessionHandler.GetSummary)
			sessions.GET("/:id/report.xlsx", hm.sessionHandler.DownloadReport)
			sessions.POST("/:id/report-question", hm.sessionHandler.ReportQuestion)
		}

		review := v1.Group("/review")
		{
			review.GET("", hm.reviewHandler.ListIncorrect)
			review.DELETE("", hm.reviewHandler.ClearIncorrect)
			review.GET("/:questionId", hm.reviewHandler.GetQuestion)
			review.DELETE("/:questionId", hm.reviewHandler.RemoveQuestion)
		}

		if hm.statsHandler != nil {
			v1.GET("/history", hm.statsHandler.GetHistory)
			v1.GET("/questions/:id/stats", hm.statsHandler.GetQuestionStats)

			reports := v1.Group("/reports")
			{
				reports.GET("", hm.statsHandler.ListReports)
				reports.GET("/:id", hm.statsHandler.GetReport)
				reports.PUT("/:id/status", hm.statsHandler.UpdateReportStatus)
			}
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quiz-player",
	})
}
