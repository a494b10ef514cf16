package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/analysis"
	"github.com/finsight-app/finsight/internal/server/config"
	"github.com/finsight-app/finsight/internal/server/repositories/repomanager"
	"github.com/finsight-app/finsight/internal/server/services"
)

type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
	Code    int            `json:"code"`
}

func newTestRouter(t *testing.T, analysisURL string) (http.Handler, *config.Config) {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	cfg.SessionTTL = 24 * time.Hour

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	rm, err := repomanager.NewFileRepositoryManager(cfg.DataDir)
	require.NoError(t, err)

	engine, err := Build(Options{
		Config:   cfg,
		Logger:   logger,
		Auth:     services.NewAuthService(rm, cfg, logger),
		Reports:  services.NewReportService(cfg, logger),
		Analysis: analysis.New(analysisURL),
	})
	require.NoError(t, err)
	return engine, cfg
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func registerAlice(t *testing.T, h http.Handler) string {
	t.Helper()
	rec, env := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret1", "role": "investor",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token, ok := env.Data["session_id"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, "http://analysis.invalid")

	rec, env := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret1", "role": "investor",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Regexp(t, `^User registered successfully! Client ID: INV_[A-F0-9]{6}_\d{8}$`, env.Message)

	user, ok := env.Data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "investor", user["role"])
	assert.Equal(t, "Alice", user["full_name"])

	// Duplicate registration surfaces the store's message verbatim.
	rec, env = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "other", "role": "investee",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Username already exists", env.Message)
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	h, _ := newTestRouter(t, "http://analysis.invalid")

	rec, env := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "", "password": "x", "role": "investor",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username and password are required", env.Message)

	rec, env = doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "password": "x", "role": "banker",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid role selected", env.Message)
}

func TestLoginEndpoint(t *testing.T) {
	h, _ := newTestRouter(t, "http://analysis.invalid")
	registerAlice(t, h)

	rec, env := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "wrongpass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", env.Message)

	// Unknown username gets the same response.
	rec2, env2 := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "mallory", "password": "secret1",
	})
	assert.Equal(t, rec.Code, rec2.Code)
	assert.Equal(t, env.Message, env2.Message)

	rec, env = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data["session_id"])
	assert.Equal(t, "Welcome back, Alice!", env.Message)
}

func TestSessionGate(t *testing.T) {
	h, _ := newTestRouter(t, "http://analysis.invalid")
	token := registerAlice(t, h)

	rec, env := doJSON(t, h, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", env.Data["username"])
	assert.Equal(t, "investor", env.Data["role"])

	rec, env = doJSON(t, h, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing session token", env.Message)

	rec, env = doJSON(t, h, http.MethodGet, "/api/auth/me", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired session", env.Message)
}

func TestLogoutEndpoint_Idempotent(t *testing.T) {
	h, _ := newTestRouter(t, "http://analysis.invalid")
	token := registerAlice(t, h)

	rec, _ := doJSON(t, h, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second logout with the same dead token still succeeds.
	rec, _ = doJSON(t, h, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The session is gone.
	rec, _ = doJSON(t, h, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnalysisProxy_Status(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status/sess-42", r.URL.Path)
		io.WriteString(w, `{"status": "completed", "files_processed": 3}`)
	}))
	defer backend.Close()

	h, _ := newTestRouter(t, backend.URL)
	token := registerAlice(t, h)

	rec, env := doJSON(t, h, http.MethodGet, "/api/analysis/status/sess-42", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", env.Data["status"])
	assert.Equal(t, float64(3), env.Data["files_processed"])
}

func TestAnalysisProxy_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer backend.Close()

	h, _ := newTestRouter(t, backend.URL)
	token := registerAlice(t, h)

	rec, env := doJSON(t, h, http.MethodGet, "/api/analysis/health", token, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "analysis service unavailable", env.Message)
}

func TestReportContent_MissingKey(t *testing.T) {
	h, _ := newTestRouter(t, "http://analysis.invalid")
	token := registerAlice(t, h)

	rec, env := doJSON(t, h, http.MethodGet, "/api/reports/content", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing report key", env.Message)
}

func TestReportAccess_ForeignKeyRejected(t *testing.T) {
	h, _ := newTestRouter(t, "http://analysis.invalid")

	rec, env := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret1", "role": "investor",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := env.Data["session_id"].(string)
	clientID := env.Data["user"].(map[string]any)["client_id"].(string)

	// A key under another client's prefix is refused before the store is
	// touched, on both the content and the download routes.
	foreign := "IVE_ABCDEF_20250101/analysis.json"
	rec, env = doJSON(t, h, http.MethodGet, "/api/reports/content?key="+foreign, token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "report does not belong to this account", env.Message)

	rec, env = doJSON(t, h, http.MethodGet, "/api/reports/download?key="+foreign, token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "report does not belong to this account", env.Message)

	// A key under the caller's own prefix passes the ownership check and
	// proceeds to the store, which is unreachable here.
	rec, env = doJSON(t, h, http.MethodGet, "/api/reports/content?key="+clientID+"/analysis.json", token, nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "report store unavailable", env.Message)
}

func TestSessionGate_StoreFault(t *testing.T) {
	h, cfg := newTestRouter(t, "http://analysis.invalid")
	token := registerAlice(t, h)

	// An unreadable session store is a server fault, not a rejected login.
	path := filepath.Join(cfg.DataDir, "sessions.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))

	rec, env := doJSON(t, h, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", env.Message)
}
