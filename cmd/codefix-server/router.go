package main

import (
	"net/http"
	"time"

	aicontroller "codefix/internal/ai/controller"
	"codefix/internal/common/http/middleware"
	"codefix/internal/common/ratelimit"
	compilercontroller "codefix/internal/compiler/controller"
	formatcontroller "codefix/internal/format/controller"
	sessioncontroller "codefix/internal/session/controller"
	"codefix/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// controllers groups the HTTP handlers mounted under /api.
type controllers struct {
	ai       *aicontroller.AIController
	compiler *compilercontroller.CompilerController
	format   *formatcontroller.FormatController
	session  *sessioncontroller.SessionController
}

func buildRouter(cfg *AppConfig, limiter *ratelimit.Limiter, h controllers) *gin.Engine {
	router := gin.New()
	router.Use(middleware.TraceContextMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORS))
	router.NoRoute(middleware.NotFound())

	environment := cfg.Server.Environment
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message":     "Server is running",
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
			"environment": environment,
		})
	})

	api := router.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimitMiddleware(limiter))
	}
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message":   "API is healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	compiler := api.Group("/compiler")
	compiler.GET("/languages", h.compiler.Languages)
	compiler.POST("/compile", h.compiler.Compile)
	compiler.POST("/fix", h.compiler.Fix)

	ai := api.Group("/ai")
	ai.POST("/explain", h.ai.Explain)
	ai.POST("/optimize", h.ai.Optimize)
	ai.POST("/generate", h.ai.Generate)

	format := api.Group("/format")
	format.POST("/format", h.format.Format)
	format.POST("/lint", h.format.Lint)

	session := api.Group("/session")
	session.POST("", h.session.Create)
	session.GET("", h.session.List)
	session.GET("/:sessionId", h.session.Get)
	session.PUT("/:sessionId", h.session.Update)
	session.DELETE("/:sessionId", h.session.Delete)
	session.POST("/:sessionId/restore", h.session.Restore)

	return router
}

func buildHTTPServer(cfg *AppConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}
}
