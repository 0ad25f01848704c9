package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	Success bool                   `json:"success"`
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

func performRequest(router *gin.Engine, method, path string, headers map[string]string) (*httptest.ResponseRecorder, apiResponse, error) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() == 0 || rec.Header().Get("Content-Type") == "" {
		return rec, resp, nil
	}
	err := json.NewDecoder(rec.Body).Decode(&resp)
	return rec, resp, err
}

func newRouter(middlewares ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middlewares...)
	router.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}
