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
	"github.com/SAP-F-2025/quiz-player/internal/bank"
	"github.com/SAP-F-2025/quiz-player/internal/config"
	"github.com/SAP-F-2025/quiz-player/internal/handlers"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := utils.NewLogger(cfg.Environment)

	var identity auth.IdentityClient
	if cfg.Casdoor.Enabled() {
		identity = auth.NewCasdoorClient(auth.CasdoorConfig(cfg.Casdoor))
	}
	verifier, err := auth.NewVerifierChain(identity, cfg.JWTSecret, cfg.BankIssuer)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger), handlers.CORS(cfg.AllowedOrigins))
	router.GET("/health", handlers.HealthCheck)
	bank.NewHandler(bank.New(bank.FileSource(cfg.BankFile)), logger).RegisterRoutes(router, verifier)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Question bank listening", "addr", srv.Addr, "file", cfg.BankFile)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("Question bank stopped", "error", err)
		log.Fatal(err)
	}
}
