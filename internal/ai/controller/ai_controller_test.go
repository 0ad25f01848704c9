package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codefix/internal/ai/controller"
	"codefix/internal/ai/provider"
	"codefix/internal/ai/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reply string
}

func (s stubProvider) Complete(context.Context, provider.Request) (string, error) {
	return s.reply, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

func newRouter(p provider.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := controller.NewAIController(service.NewAssistService(p))
	router := gin.New()
	router.POST("/explain", h.Explain)
	router.POST("/optimize", h.Optimize)
	router.POST("/generate", h.Generate)
	return router
}

func post(t *testing.T, router *gin.Engine, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestExplain(t *testing.T) {
	router := newRouter(stubProvider{reply: `{"explanation":"adds","concepts":["math"],"complexity":"O(1)"}`})

	rec, env := post(t, router, "/explain", `{"code":"1+1","language":"python"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"explanation":"adds","concepts":["math"],"complexity":"O(1)"}`, string(env.Data))
}

func TestValidationErrors(t *testing.T) {
	router := newRouter(stubProvider{})
	tests := []struct {
		path    string
		body    string
		details string
	}{
		{
			path:    "/explain",
			body:    `{"code":"  "}`,
			details: `[{"field":"code","message":"Code is required and must be a non-empty string"},{"field":"language","message":"Language is required and must be a string"}]`,
		},
		{
			path:    "/optimize",
			body:    `{"code":"x"}`,
			details: `[{"field":"language","message":"Language is required and must be a string"}]`,
		},
		{
			path:    "/generate",
			body:    `{"language":"python"}`,
			details: `[{"field":"description","message":"Description is required and must be a non-empty string"}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec, env := post(t, router, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "VALIDATION_ERROR", env.Error)
			assert.Equal(t, "Validation failed", env.Message)
			assert.JSONEq(t, tt.details, string(env.Details))
		})
	}
}

func TestMalformedBody(t *testing.T) {
	rec, env := post(t, newRouter(stubProvider{}), "/explain", `{"code": 5}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request parameters", env.Message)
}

func TestNotConfigured(t *testing.T) {
	rec, env := post(t, newRouter(nil), "/generate", `{"description":"hello world","language":"python"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "AI_NOT_CONFIGURED", env.Error)
	assert.Equal(t, "AI API configuration is missing", env.Message)
}

func TestOptimizeDefaults(t *testing.T) {
	router := newRouter(stubProvider{reply: "not json"})

	rec, env := post(t, router, "/optimize", `{"code":"x = 1","language":"python"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"optimizedCode":"x = 1","explanation":"not json","improvements":[]}`, string(env.Data))
}
