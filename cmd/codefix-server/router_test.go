package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	aicontroller "codefix/internal/ai/controller"
	aiservice "codefix/internal/ai/service"
	"codefix/internal/common/cache"
	"codefix/internal/common/ratelimit"
	compilercontroller "codefix/internal/compiler/controller"
	compilerservice "codefix/internal/compiler/service"
	formatcontroller "codefix/internal/format/controller"
	formatservice "codefix/internal/format/service"
	sessioncontroller "codefix/internal/session/controller"
	"codefix/internal/session/repository"
	sessionservice "codefix/internal/session/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool                   `json:"success"`
	Code    int                    `json:"code"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
	Details map[string]interface{} `json:"details"`
}

func newTestRouter(t *testing.T, rateMax int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := loadAppConfig("")
	require.NoError(t, err)
	cfg.RateLimit.Max = rateMax

	memory := cache.NewMemoryCache()
	t.Cleanup(func() { _ = memory.Close() })

	compiler, err := compilerservice.NewCompileService(cfg.Compiler, nil)
	require.NoError(t, err)
	sessions := sessionservice.NewSessionService(repository.NewSessionRepository(memory, cfg.sessionTTL()), cfg.Session)

	limiter := ratelimit.NewLimiter(memory, cfg.RateLimit.Window, cfg.RateLimit.Max, cfg.RateLimit.CacheTimeout)
	return buildRouter(cfg, limiter, controllers{
		ai:       aicontroller.NewAIController(aiservice.NewAssistService(nil)),
		compiler: compilercontroller.NewCompilerController(compiler, aiservice.NewFixService(nil)),
		format:   formatcontroller.NewFormatController(formatservice.NewFormatService()),
		session:  sessioncontroller.NewSessionController(sessions),
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t, 100)

	rec, env := doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is running", env.Data["message"])
	assert.Equal(t, "development", env.Data["environment"])
	_, err := time.Parse(time.RFC3339Nano, env.Data["timestamp"].(string))
	assert.NoError(t, err)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))

	rec, env = doRequest(t, router, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is healthy", env.Data["message"])
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, 100)

	rec, env := doRequest(t, router, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route /api/nope not found", env.Message)
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	router := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		rec, _ := doRequest(t, router, http.MethodGet, "/api/compiler/languages", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := doRequest(t, router, http.MethodGet, "/api/compiler/languages", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests. Please try again later.", env.Message)
	assert.Contains(t, env.Details, "retryAfter")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, _ = doRequest(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, 100)

	req := httptest.NewRequest(http.MethodOptions, "/api/compiler/compile", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRoutesAreMounted(t *testing.T) {
	router := newTestRouter(t, 100)

	rec, env := doRequest(t, router, http.MethodPost, "/api/format/format", `{"code":"x = 1   \n","language":"python"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x = 1", env.Data["formattedCode"])

	rec, env = doRequest(t, router, http.MethodPost, "/api/ai/explain", `{"code":"x","language":"python"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "AI_NOT_CONFIGURED", env.Error)

	rec, env = doRequest(t, router, http.MethodPost, "/api/session", `{"sessionId":"s1","code":"print(1)"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := env.Data["session"].(map[string]interface{})
	assert.Equal(t, "s1", session["id"])

	rec, env = doRequest(t, router, http.MethodGet, "/api/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), env.Data["count"])

	rec, _ = doRequest(t, router, http.MethodDelete, "/api/session/s1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = doRequest(t, router, http.MethodGet, "/api/session/s1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error)

	rec, env = doRequest(t, router, http.MethodPost, "/api/session/s1/restore", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error, "restore is mounted but no archive is configured")
}
