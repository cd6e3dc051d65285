package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	"github.com/SAP-F-2025/quiz-player/internal/cache"
	"github.com/SAP-F-2025/quiz-player/internal/config"
	"github.com/SAP-F-2025/quiz-player/internal/events"
	"github.com/SAP-F-2025/quiz-player/internal/grader"
	"github.com/SAP-F-2025/quiz-player/internal/handlers"
	"github.com/SAP-F-2025/quiz-player/internal/normalizer"
	"github.com/SAP-F-2025/quiz-player/internal/questionclient"
	"github.com/SAP-F-2025/quiz-player/internal/repositories"
	"github.com/SAP-F-2025/quiz-player/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-player/internal/session"
	"github.com/SAP-F-2025/quiz-player/internal/store"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
	"github.com/SAP-F-2025/quiz-player/internal/validator"
	"github.com/SAP-F-2025/quiz-player/pkg"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := utils.NewLogger(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Quiz player stopped", "error", err)
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger utils.Logger) error {
	var (
		answerLogs repositories.AnswerLogRepository
		reports    repositories.QuestionReportRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return err
		}
		answerLogs = postgres.NewAnswerLogPostgreSQL(db)
		reports = postgres.NewQuestionReportPostgreSQL(db)
		logger.Info("Database connected")
	}

	var (
		st store.Store
		qc cache.CacheService
	)
	if cfg.RedisURL != "" {
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		st = store.NewRedisStore(client, cfg.StoreTTL, logger)
		qc = cache.NewRedisCache(client, logger)
		logger.Info("Redis connected")
	} else {
		st = store.NewMemoryStore()
		qc = cache.NewMemoryCache()
		logger.Warn("REDIS_URL not set, incorrect sets are kept in memory")
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger), answerLogs)
	if err != nil {
		return err
	}
	telemetry := events.NewTelemetry(publisher, logger)
	defer telemetry.Close()

	var identity auth.IdentityClient
	if cfg.Casdoor.Enabled() {
		identity = auth.NewCasdoorClient(auth.CasdoorConfig(cfg.Casdoor))
	}
	verifier, err := auth.NewVerifierChain(identity, cfg.JWTSecret, cfg.BankIssuer)
	if err != nil {
		return err
	}

	v := validator.New()
	norm := normalizer.New(v, logger)
	httpClient := &http.Client{Timeout: 15 * time.Second}
	newFetcher := func(creds auth.CredentialProvider) questionclient.Fetcher {
		upstream := questionclient.New(cfg.QuestionEndpoint, creds, httpClient, logger)
		return questionclient.NewCachedFetcher(upstream, qc, cfg.CacheTTL, logger)
	}

	manager := session.NewManager(session.Deps{
		Normalizer: norm,
		Grader:     grader.New(st, logger),
		Sampler:    session.NewSampler(cfg.QuestionPoolSize, cfg.ExcludedIDs, st, logger),
		Telemetry:  telemetry,
		Logger:     logger,
	}, newFetcher, 0)
	if identity != nil {
		manager.WithIdentity(identity)
	}
	defer manager.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger), utils.ContextLogger(logger), handlers.CORS(cfg.AllowedOrigins))
	handlers.NewHandlerManager(handlers.Dependencies{
		Manager:    manager,
		Reviewer:   session.NewReviewer(st, norm),
		NewFetcher: newFetcher,
		Verifier:   verifier,
		Validator:  v,
		AnswerLogs: answerLogs,
		Reports:    reports,
		Logger:     logger,
	}).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Quiz player listening", "addr", srv.Addr, "question_endpoint", cfg.QuestionEndpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n := manager.Sweep(cfg.SessionIdleTimeout); n > 0 {
					logger.Info("Dropped idle sessions", "count", n)
				}
			}
		}
	})
	return g.Wait()
}
