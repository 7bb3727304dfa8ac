package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "answerhub/docs" // This is for Swagger
	"answerhub/internal/auth"
	"answerhub/internal/config"
	"answerhub/internal/database"
	"answerhub/internal/handlers"
	"answerhub/internal/logger"
	"answerhub/internal/middleware"
	"answerhub/internal/repository"
	"answerhub/internal/scheduler"
	"answerhub/internal/service"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title AnswerHub API
// @version 1.0
// @description Peer review orchestration API for the AnswerHub Q&A platform

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize storage
	store := repository.NewStore(db.DB)
	userRepo := repository.NewUserRepository(db.DB)

	// Initialize services
	tokenService := auth.NewService(&cfg.JWT)
	authService := service.NewAuthService(userRepo, tokenService)
	reviewerService := service.NewReviewerService(store)
	assignmentService := service.NewAssignmentService(store, cfg.Review)
	reviewService := service.NewReviewService(store)
	consensusService := service.NewConsensusService(store, assignmentService)
	answerService := service.NewAnswerService(store, assignmentService, reviewService, consensusService)
	blindService := service.NewBlindRankingService(store)

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(assignmentService, reviewService, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(tokenService)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	reviewerHandler := handlers.NewReviewerHandler(reviewerService)
	questionHandler := handlers.NewQuestionHandler(answerService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	reviewHandler := handlers.NewReviewHandler(reviewService, answerService, consensusService)
	blindHandler := handlers.NewBlindRankingHandler(blindService)

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	protected := func(h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(h)
	}

	// Auth
	mux.Handle("GET /api/v1/auth/me", protected(authHandler.Me))

	// Reviewer directory
	mux.Handle("POST /api/v1/reviewers", protected(reviewerHandler.Create))
	mux.Handle("GET /api/v1/reviewers", protected(reviewerHandler.List))
	mux.Handle("GET /api/v1/reviewers/{id}", protected(reviewerHandler.Get))
	mux.Handle("PUT /api/v1/reviewers/{id}/active", protected(reviewerHandler.SetActive))
	mux.Handle("GET /api/v1/reviewers/{id}/assignments", protected(assignmentHandler.ListForReviewer))
	mux.Handle("GET /api/v1/reviewers/{id}/reviews/pending", protected(reviewHandler.ListPendingForReviewer))

	// Questions and answers
	mux.Handle("POST /api/v1/questions", protected(questionHandler.CreateQuestion))
	mux.Handle("GET /api/v1/questions/{id}", protected(questionHandler.GetQuestion))
	mux.Handle("POST /api/v1/questions/{id}/answers", protected(questionHandler.SubmitAnswer))
	mux.Handle("GET /api/v1/questions/{id}/answers", protected(questionHandler.ListAnswers))
	mux.Handle("GET /api/v1/answers/{id}", protected(questionHandler.GetAnswer))
	mux.Handle("GET /api/v1/answers/{id}/assignments", protected(assignmentHandler.ListForAnswer))
	mux.Handle("GET /api/v1/answers/{id}/reviews", protected(reviewHandler.ListForAnswer))
	mux.Handle("GET /api/v1/answers/{id}/stats", protected(reviewHandler.Stats))
	mux.Handle("POST /api/v1/answers/{id}/evaluate", protected(reviewHandler.Evaluate))

	// Assignments
	mux.Handle("POST /api/v1/assignments", protected(assignmentHandler.Assign))
	mux.Handle("POST /api/v1/assignments/redistribute", protected(assignmentHandler.Redistribute))
	mux.Handle("GET /api/v1/assignments/{id}", protected(assignmentHandler.Get))
	mux.Handle("PUT /api/v1/assignments/{id}/status", protected(assignmentHandler.UpdateStatus))

	// Reviews
	mux.Handle("POST /api/v1/reviews", protected(reviewHandler.Create))
	mux.Handle("GET /api/v1/reviews/{id}", protected(reviewHandler.Get))
	mux.Handle("POST /api/v1/reviews/{id}/submit", protected(reviewHandler.Submit))

	// Blind review
	mux.Handle("POST /api/v1/questions/{id}/blind-assignments", protected(blindHandler.CreateAssignment))
	mux.Handle("POST /api/v1/questions/{id}/rankings", protected(blindHandler.SubmitRanking))
	mux.Handle("GET /api/v1/questions/{id}/borda", protected(blindHandler.BordaWinner))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`))
		if err != nil {
			slog.Error("Failed to write health check response", "error", err)
		}
	})

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
