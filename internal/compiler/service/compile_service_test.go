package service_test

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"codefix/internal/compiler/runner"
	"codefix/internal/compiler/service"
	pkgerrors "codefix/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	result  runner.RunResult
	err     error
	started chan struct{}
	block   chan struct{}
	last    runner.RunRequest
}

func (f *fakeRunner) Run(ctx context.Context, req runner.RunRequest) (runner.RunResult, error) {
	f.last = req
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func newService(t *testing.T, cfg service.Config, r runner.Runner) *service.CompileService {
	t.Helper()
	svc, err := service.NewCompileService(cfg, r)
	require.NoError(t, err)
	return svc
}

func TestCompileSuccess(t *testing.T) {
	fake := &fakeRunner{result: runner.RunResult{Stdout: "hi\n"}}
	svc := newService(t, service.Config{}, fake)

	res, err := svc.Compile(context.Background(), "print('hi')", "Python")

	require.NoError(t, err)
	assert.Equal(t, "hi\n", res.Output)
	assert.Nil(t, res.Error)
	assert.GreaterOrEqual(t, res.ExecutionTimeMs, int64(0))
	assert.Equal(t, "python", fake.last.Language.ID)
	assert.Equal(t, 5*time.Second, fake.last.Timeout)
	assert.Equal(t, int64(1<<20), fake.last.MaxOutputBytes)
}

func TestCompileUserErrors(t *testing.T) {
	tests := []struct {
		name   string
		result runner.RunResult
		runErr error
		output string
		errMsg string
	}{
		{name: "stderr", result: runner.RunResult{Stdout: "partial", Stderr: "Traceback", ExitCode: 1}, output: "partial", errMsg: "Traceback"},
		{name: "silent exit", result: runner.RunResult{ExitCode: 2}, errMsg: "Process exited with code 2"},
		{name: "timeout", result: runner.RunResult{Stdout: "x", TimedOut: true, ExitCode: -1}, errMsg: "Execution timeout"},
		{name: "start failure", runErr: errors.New("start python3: not found"), errMsg: "start python3: not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, service.Config{}, &fakeRunner{result: tt.result, err: tt.runErr})

			res, err := svc.Compile(context.Background(), "code", "python")

			require.NoError(t, err)
			assert.Equal(t, tt.output, res.Output)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.errMsg, *res.Error)
		})
	}
}

func TestCompileUnsupportedLanguage(t *testing.T) {
	fake := &fakeRunner{}
	svc := newService(t, service.Config{}, fake)

	res, err := svc.Compile(context.Background(), "puts 1", "ruby")

	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, "Language ruby is not supported yet. Supported languages: python", *res.Error)
	assert.Empty(t, fake.last.Language.ID, "runner must not be called")
}

func TestCompileCodeTooLong(t *testing.T) {
	svc := newService(t, service.Config{MaxCodeLength: 5}, &fakeRunner{})

	res, err := svc.Compile(context.Background(), "123456", "python")
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, "Code exceeds maximum length of 5 characters", *res.Error)

	res, err = svc.Compile(context.Background(), "héllo", "python")
	require.NoError(t, err)
	assert.Nil(t, res.Error, "length counts characters, not bytes")
}

func TestCompileQueueFull(t *testing.T) {
	fake := &fakeRunner{started: make(chan struct{}, 1), block: make(chan struct{})}
	svc := newService(t, service.Config{MaxConcurrent: 1, QueueTimeout: 50 * time.Millisecond}, fake)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = svc.Compile(context.Background(), "a", "python")
	}()
	<-fake.started

	_, err := svc.Compile(context.Background(), "b", "python")
	assert.True(t, pkgerrors.Is(err, pkgerrors.ExecutionQueueFull))
	assert.Equal(t, 503, pkgerrors.GetCode(err).HTTPStatus())

	close(fake.block)
	<-done

	fake.started = nil
	_, err = svc.Compile(context.Background(), "c", "python")
	assert.NoError(t, err, "slot is released after the run")
}

func TestLanguages(t *testing.T) {
	svc := newService(t, service.Config{PythonCommand: "python"}, &fakeRunner{})

	langs := svc.Languages()
	require.Len(t, langs, 1)
	assert.Equal(t, "python", langs[0].ID)
	assert.Equal(t, "Python", langs[0].Name)
	assert.Equal(t, []string{"python", runner.FilePlaceholder}, langs[0].Command)
	assert.True(t, svc.Supports("PYTHON"))
	assert.False(t, svc.Supports("go"))
}

func TestNewCompileServiceRejectsBadLanguages(t *testing.T) {
	_, err := service.NewCompileService(service.Config{Languages: []runner.LanguageSpec{{ID: "x"}}}, nil)
	assert.Error(t, err)
}

func TestCompilePythonEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	svc := newService(t, service.Config{WorkDir: t.TempDir()}, nil)

	res, err := svc.Compile(context.Background(), "print('hello')", "python")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Output)
	assert.Nil(t, res.Error)

	res, err = svc.Compile(context.Background(), "raise ValueError('bad')", "python")
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.True(t, strings.Contains(*res.Error, "ValueError: bad"))
}
