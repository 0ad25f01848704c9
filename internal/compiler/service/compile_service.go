package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"codefix/internal/compiler/runner"
	pkgerrors "codefix/pkg/errors"
	"codefix/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	defaultMaxCodeLength    = 10000
	defaultMaxExecutionTime = 5 * time.Second
	defaultMaxOutputBytes   = 1 << 20
	defaultMaxConcurrent    = 4
	defaultQueueTimeout     = 2 * time.Second
)

// Config controls execution limits.
type Config struct {
	MaxCodeLength    int                   `yaml:"maxCodeLength"`
	MaxExecutionTime time.Duration         `yaml:"maxExecutionTime"`
	MaxOutputBytes   int64                 `yaml:"maxOutputBytes"`
	MaxConcurrent    int                   `yaml:"maxConcurrent"`
	QueueTimeout     time.Duration         `yaml:"queueTimeout"`
	WorkDir          string                `yaml:"workDir"`
	PythonCommand    string                `yaml:"pythonCommand"`
	Languages        []runner.LanguageSpec `yaml:"languages"`
}

func (c Config) withDefaults() Config {
	if c.MaxCodeLength <= 0 {
		c.MaxCodeLength = defaultMaxCodeLength
	}
	if c.MaxExecutionTime <= 0 {
		c.MaxExecutionTime = defaultMaxExecutionTime
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = defaultMaxOutputBytes
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
	if c.QueueTimeout <= 0 {
		c.QueueTimeout = defaultQueueTimeout
	}
	if len(c.Languages) == 0 {
		c.Languages = []runner.LanguageSpec{runner.PythonLanguage(c.PythonCommand)}
	}
	return c
}

// Result is the outcome of one compile request. Error is nil when the
// program succeeded.
type Result struct {
	Output          string  `json:"output"`
	Error           *string `json:"error"`
	ExecutionTimeMs int64   `json:"executionTime"`
}

// CompileService runs user code with bounded concurrency.
type CompileService struct {
	cfg      Config
	registry *runner.Registry
	runner   runner.Runner
	sem      chan struct{}
}

// NewCompileService builds the language registry from cfg.
func NewCompileService(cfg Config, r runner.Runner) (*CompileService, error) {
	cfg = cfg.withDefaults()
	registry, err := runner.NewRegistry(cfg.Languages...)
	if err != nil {
		return nil, fmt.Errorf("build language registry: %w", err)
	}
	if r == nil {
		r = runner.NewProcessRunner(cfg.WorkDir)
	}
	return &CompileService{
		cfg:      cfg,
		registry: registry,
		runner:   r,
		sem:      make(chan struct{}, cfg.MaxConcurrent),
	}, nil
}

// Languages lists the supported languages.
func (s *CompileService) Languages() []runner.LanguageSpec {
	return s.registry.List()
}

// Supports reports whether language is registered.
func (s *CompileService) Supports(language string) bool {
	_, ok := s.registry.Lookup(language)
	return ok
}

// SupportedIDs returns the registered language ids.
func (s *CompileService) SupportedIDs() []string {
	return s.registry.IDs()
}

// Compile executes code. Failures of the user program are reported in the
// result; the returned error covers only infrastructure problems such as a
// full worker pool.
func (s *CompileService) Compile(ctx context.Context, code, language string) (Result, error) {
	start := time.Now()
	finish := func(output string, errMsg *string) Result {
		return Result{Output: output, Error: errMsg, ExecutionTimeMs: time.Since(start).Milliseconds()}
	}

	lang, ok := s.registry.Lookup(language)
	if !ok {
		msg := fmt.Sprintf("Language %s is not supported yet. Supported languages: %s", language, strings.Join(s.registry.IDs(), ", "))
		return finish("", &msg), nil
	}
	if utf8.RuneCountInString(code) > s.cfg.MaxCodeLength {
		msg := fmt.Sprintf("Code exceeds maximum length of %d characters", s.cfg.MaxCodeLength)
		return finish("", &msg), nil
	}

	if err := s.acquireSlot(ctx); err != nil {
		return Result{}, err
	}
	defer s.releaseSlot()

	res, err := s.runner.Run(ctx, runner.RunRequest{
		Language:       lang,
		Source:         code,
		Timeout:        s.cfg.MaxExecutionTime,
		MaxOutputBytes: s.cfg.MaxOutputBytes,
	})
	if err != nil {
		logger.Warn(ctx, "code execution failed to start", zap.String("language", lang.ID), zap.Error(err))
		msg := err.Error()
		return finish("", &msg), nil
	}
	if res.TimedOut {
		msg := "Execution timeout"
		return finish("", &msg), nil
	}

	var errMsg *string
	switch {
	case res.Stderr != "":
		errMsg = &res.Stderr
	case res.ExitCode != 0:
		msg := fmt.Sprintf("Process exited with code %d", res.ExitCode)
		errMsg = &msg
	}
	return finish(res.Stdout, errMsg), nil
}

func (s *CompileService) acquireSlot(ctx context.Context) error {
	timer := time.NewTimer(s.cfg.QueueTimeout)
	defer timer.Stop()
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return pkgerrors.Wrap(ctx.Err(), pkgerrors.Timeout)
	case <-timer.C:
		return pkgerrors.New(pkgerrors.ExecutionQueueFull)
	}
}

func (s *CompileService) releaseSlot() {
	select {
	case <-s.sem:
	default:
	}
}
