//go:build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/answerevent"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/progress"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/question"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/session"
	"github.com/medrecall/quizdeck-backend/internal/adapter/postgres/testhelper"
	authpkg "github.com/medrecall/quizdeck-backend/internal/auth"
	"github.com/medrecall/quizdeck-backend/internal/config"
	"github.com/medrecall/quizdeck-backend/internal/service/content"
	"github.com/medrecall/quizdeck-backend/internal/service/quiz"
	"github.com/medrecall/quizdeck-backend/internal/transport/middleware"
	"github.com/medrecall/quizdeck-backend/internal/transport/rest"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	jwt    *authpkg.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// ---------------------------------------------------------------------------
// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
// ---------------------------------------------------------------------------

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	// 1. Get pool from testcontainers-backed helper.
	pool := testhelper.SetupTestDB(t)

	// 2. Infrastructure.
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	// 3. Repositories + selector.
	questionRepo := question.New(pool)
	progressRepo := progress.New(pool)
	sessionRepo := session.New(pool)
	answerRepo := answerevent.New(pool)
	selector := content.NewSelector(pool)

	// 4. JWT manager with a test secret (>= 32 chars).
	jwtMgr := authpkg.NewJWTManager(
		"test-secret-at-least-32-chars-long!!", "test-issuer", 15*time.Minute,
	)

	// 5. Quiz service.
	quizService := quiz.NewService(
		logger, questionRepo, progressRepo, sessionRepo, answerRepo,
		selector, txm, config.QuizConfig{DefaultSessionLimit: 20},
	)

	// 6. Handlers + middleware chain.
	healthHandler := rest.NewHealthHandler(pool, "test-version")
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

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.CORS(config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		}),
		middleware.Auth(jwtMgr),
	)(mux)

	// 7. httptest server.
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		jwt:    jwtMgr,
	}
}

// createTestUser seeds a user row and returns its id plus a valid token.
func createTestUser(t *testing.T, ts *testServer) (uuid.UUID, string) {
	t.Helper()

	userID := testhelper.SeedUser(t, ts.Pool)
	token, err := ts.jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return userID, token
}

// ---------------------------------------------------------------------------
// HTTP helpers.
// ---------------------------------------------------------------------------

// doJSON sends a request with an optional JSON body and bearer token, and
// returns the status code plus the decoded response body.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decode response body: %v", err)
	}

	return resp.StatusCode, decoded
}

// stringSlice converts a decoded JSON array to []string.
func stringSlice(t *testing.T, v any) []string {
	t.Helper()

	raw, ok := v.([]any)
	require.True(t, ok, "expected JSON array, got %T", v)

	out := make([]string, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		require.True(t, ok, "expected string element, got %T", item)
		out[i] = s
	}
	return out
}
