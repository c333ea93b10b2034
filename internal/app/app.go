package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/answerevent"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/progress"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/question"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/session"
	"github.com/medrecall/quizdeck-backend/internal/auth"
	"github.com/medrecall/quizdeck-backend/internal/config"
	"github.com/medrecall/quizdeck-backend/internal/service/content"
	"github.com/medrecall/quizdeck-backend/internal/service/quiz"
	"github.com/medrecall/quizdeck-backend/internal/transport/middleware"
	"github.com/medrecall/quizdeck-backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// repositories and services, and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	questionRepo := question.New(pool)
	progressRepo := progress.New(pool)
	sessionRepo := session.New(pool)
	answerRepo := answerevent.New(pool)

	selector := content.NewSelector(pool)

	quizService := quiz.NewService(
		logger, questionRepo, progressRepo, sessionRepo, answerRepo,
		selector, txManager, cfg.Quiz,
	)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	healthHandler := rest.NewHealthHandler(pool, BuildVersion())
	quizHandler := rest.NewQuizHandler(quizService, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /quiz/sessions", quizHandler.CreateSession)
	mux.HandleFunc("GET /quiz/sessions/active", quizHandler.ActiveSession)
	mux.HandleFunc("GET /quiz/sessions/{id}/resume", quizHandler.Resume)
	mux.HandleFunc("POST /quiz/sessions/{id}/answer", quizHandler.SubmitAnswer)
	mux.HandleFunc("GET /questions/{id}/feedback", quizHandler.QuestionFeedback)
	mux.HandleFunc("GET /dashboard/summary", quizHandler.DashboardSummary)

	chain := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(jwtManager),
	}
	if cfg.Server.RateLimitPerMinute > 0 {
		limiter := middleware.NewRateLimiter(time.Minute)
		defer limiter.Stop()
		chain = append(chain, limiter.Limit(cfg.Server.RateLimitPerMinute))
	}

	handler := middleware.Chain(chain...)(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}
