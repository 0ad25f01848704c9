package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	aicontroller "codefix/internal/ai/controller"
	"codefix/internal/ai/provider"
	aiservice "codefix/internal/ai/service"
	"codefix/internal/common/cache"
	"codefix/internal/common/ratelimit"
	"codefix/internal/common/storage"
	compilercontroller "codefix/internal/compiler/controller"
	compilerservice "codefix/internal/compiler/service"
	formatcontroller "codefix/internal/format/controller"
	formatservice "codefix/internal/format/service"
	sessioncontroller "codefix/internal/session/controller"
	"codefix/internal/session/repository"
	sessionservice "codefix/internal/session/service"
	"codefix/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/server.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(appCfg); err != nil {
		logger.Fatal(context.Background(), "server stopped with error", zap.Error(err))
	}
}

func run(appCfg *AppConfig) error {
	ctx := context.Background()
	if appCfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cacheClient, err := newCache(appCfg)
	if err != nil {
		return fmt.Errorf("init cache failed: %w", err)
	}
	sessionRepo := repository.NewSessionRepository(cacheClient, appCfg.sessionTTL())
	defer func() {
		if err := sessionRepo.Close(); err != nil {
			logger.Warn(ctx, "close session store failed", zap.Error(err))
		}
	}()

	var opts []sessionservice.Option
	if appCfg.Session.Archive.Enabled {
		archiver, err := newArchiver(ctx, appCfg.Session.Archive)
		if err != nil {
			return fmt.Errorf("init session archive failed: %w", err)
		}
		defer archiver.Close()
		opts = append(opts, sessionservice.WithArchiver(archiver))
	}

	sessions := sessionservice.NewSessionService(sessionRepo, appCfg.Session, opts...)
	sessions.Start(ctx)
	defer sessions.Stop()

	compiler, err := compilerservice.NewCompileService(appCfg.Compiler, nil)
	if err != nil {
		return fmt.Errorf("init compiler failed: %w", err)
	}

	aiProvider := provider.New(appCfg.AI)
	if aiProvider == nil {
		logger.Warn(ctx, "AI API is not configured; AI endpoints will answer 503")
	}
	fix := aiservice.NewFixService(aiProvider)
	assist := aiservice.NewAssistService(aiProvider)

	var limiter *ratelimit.Limiter
	if *appCfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(cacheClient, appCfg.RateLimit.Window, appCfg.RateLimit.Max, appCfg.RateLimit.CacheTimeout)
	}

	router := buildRouter(appCfg, limiter, controllers{
		ai:       aicontroller.NewAIController(assist),
		compiler: compilercontroller.NewCompilerController(compiler, fix),
		format:   formatcontroller.NewFormatController(formatservice.NewFormatService()),
		session:  sessioncontroller.NewSessionController(sessions),
	})
	httpServer := buildHTTPServer(appCfg, router)

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("init http listener failed: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "codefix server started",
			zap.String("addr", appCfg.Server.Addr),
			zap.String("environment", appCfg.Server.Environment),
			zap.String("session_backend", appCfg.Session.Backend),
			zap.Bool("ai_configured", aiProvider != nil),
		)
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serveErr error
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("http server stopped: %w", err)
		}
	case <-shutdownCtx.Done():
		logger.Info(ctx, "shutdown signal received")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, appCfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error(ctx, "http server shutdown failed", zap.Error(err))
	}
	return serveErr
}

func newCache(appCfg *AppConfig) (cache.Cache, error) {
	if appCfg.Session.Backend == backendRedis {
		return cache.NewRedisCacheWithConfig(&appCfg.Redis)
	}
	return cache.NewMemoryCache(), nil
}

func newArchiver(ctx context.Context, cfg repository.ArchiveConfig) (*repository.Archiver, error) {
	store, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, err
	}
	archiver, err := repository.NewArchiver(store, cfg.Bucket, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	if err := archiver.Prepare(ctx); err != nil {
		return nil, err
	}
	return archiver, nil
}
