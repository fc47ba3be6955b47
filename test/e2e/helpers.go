//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/campushub/internal/api/handlers"
	"github.com/campushub/campushub/internal/cache"
	"github.com/campushub/campushub/internal/repository"
	"github.com/campushub/campushub/internal/server"
	"github.com/campushub/campushub/internal/service"
	"github.com/campushub/campushub/internal/testutil"
)

// Token and user identity used by authenticated requests. The user row is
// inserted by Bootstrap; the validator maps the token at server start.
const (
	E2EToken  = "e2e-token"
	E2EUserID = "e2e-user"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with a database container
// and an in-process server
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	return newE2EEnv(ctx, t, pgC, pool)
}

// SetupE2EEnvFallback is SetupE2EEnv against a database migrated through the
// base schema only. The search migration is absent, so the capability probe
// fails and the server runs on the fallback tier.
func SetupE2EEnvFallback(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewBarePool(ctx, t, pgC)
	if err := testutil.RunMigrationFiles(ctx, pool, "../../migrations", "0001_init.up.sql"); err != nil {
		t.Fatalf("failed to apply base migration: %v", err)
	}

	return newE2EEnv(ctx, t, pgC, pool)
}

func newE2EEnv(ctx context.Context, t *testing.T, pgC *testutil.PostgresContainer, pool *pgxpool.Pool) *E2ETestEnv {
	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	serverURL, serverCloser := startServer(t, pool, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Bootstrap inserts the authenticated test user.
func (e *E2ETestEnv) Bootstrap() {
	_, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO users (id, username, display_name) VALUES ($1, $2, $3)`,
		E2EUserID, "e2e", "E2E Tester")
	if err != nil {
		e.T.Fatalf("failed to insert test user: %v", err)
	}
}

// SeedUniversity inserts a university and returns its ID.
func (e *E2ETestEnv) SeedUniversity(name, country, city, description string) string {
	id := uuid.NewString()
	_, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO universities (id, name, country, city, description) VALUES ($1, $2, $3, $4, $5)`,
		id, name, country, city, description)
	if err != nil {
		e.T.Fatalf("failed to insert university: %v", err)
	}
	return id
}

// SeedUser inserts a user and returns its ID.
func (e *E2ETestEnv) SeedUser(username, displayName string) string {
	id := uuid.NewString()
	_, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO users (id, username, display_name) VALUES ($1, $2, $3)`,
		id, username, displayName)
	if err != nil {
		e.T.Fatalf("failed to insert user: %v", err)
	}
	return id
}

// Get performs a GET request; a non-empty token is sent as a bearer token.
func (e *E2ETestEnv) Get(path, token string) (int, []byte, error) {
	return e.doRequest(http.MethodGet, path, nil, token)
}

// Post performs a POST request with a JSON body.
func (e *E2ETestEnv) Post(path string, body any, token string) (int, []byte, error) {
	return e.doRequest(http.MethodPost, path, body, token)
}

// Delete performs a DELETE request.
func (e *E2ETestEnv) Delete(path, token string) (int, []byte, error) {
	return e.doRequest(http.MethodDelete, path, nil, token)
}

func (e *E2ETestEnv) doRequest(method, path string, body any, token string) (int, []byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.ServerURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// startServer wires the full stack against the test database and starts an
// HTTP server on the given port
func startServer(t *testing.T, pool *pgxpool.Pool, port int) (string, func()) {
	universityRepo := repository.NewUniversityRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	noteRepo := repository.NewNoteRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	historyRepo := repository.NewSearchHistoryRepository(pool)
	suggestionRepo := repository.NewSuggestionRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	c := cache.NewMemory()
	prober := service.NewCapabilityProber(repository.NewCapabilityProbe(pool))

	historySvc := service.NewHistoryService(historyRepo, c)
	searchSvc := service.NewSearchService(prober, universityRepo, userRepo, postRepo, noteRepo, reviewRepo, historySvc)
	suggestionSvc := service.NewSuggestionService(prober, suggestionRepo)
	postSvc := service.NewPostService(postRepo, c)
	noteSvc := service.NewNoteService(noteRepo)
	reviewSvc := service.NewReviewService(reviewRepo, universityRepo, txRunner)

	cfg := server.RouterConfig{
		TokenValidator:    service.NewStaticTokenValidator(map[string]string{E2EToken: E2EUserID}),
		SearchHandler:     handlers.NewSearchHandler(searchSvc, suggestionSvc, historySvc),
		UniversityHandler: handlers.NewUniversityHandler(universityRepo),
		UserHandler:       handlers.NewUserHandler(userRepo),
		PostHandler:       handlers.NewPostHandler(postSvc),
		NoteHandler:       handlers.NewNoteHandler(noteSvc),
		ReviewHandler:     handlers.NewReviewHandler(reviewSvc),
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.NewRouter(cfg),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
