// Package runner executes user code as a local subprocess under a wall-clock
// timeout. There is no isolation beyond a private working directory.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"codefix/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	defaultTimeout        = 5 * time.Second
	defaultMaxOutputBytes = 1 << 20

	// TruncationMarker is appended to output cut at the byte limit.
	TruncationMarker = "\n[output truncated]"

	waitDelay = time.Second
)

// RunRequest describes one execution.
type RunRequest struct {
	Language       LanguageSpec
	Source         string
	Timeout        time.Duration
	MaxOutputBytes int64
}

// RunResult captures what the process did. ExitCode is -1 when the process
// was killed.
type RunResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Runner executes source code.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (RunResult, error)
}

// ProcessRunner runs each request in a fresh temp workspace.
type ProcessRunner struct {
	workRoot string
}

// NewProcessRunner creates a runner whose workspaces live under workRoot.
// An empty workRoot uses the system temp dir.
func NewProcessRunner(workRoot string) *ProcessRunner {
	return &ProcessRunner{workRoot: workRoot}
}

// Run writes the source into a workspace, executes it and removes the
// workspace on every exit path. The error is non-nil only when the process
// could not be started or the caller's context ended first.
func (r *ProcessRunner) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if len(req.Language.Command) == 0 {
		return RunResult{}, fmt.Errorf("language %q has no command", req.Language.ID)
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := req.MaxOutputBytes
	if limit <= 0 {
		limit = defaultMaxOutputBytes
	}

	ws, err := acquireWorkspace(r.workRoot, req.Language.Extension, req.Source)
	if err != nil {
		return RunResult{}, err
	}
	defer ws.release(ctx)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := req.Language.Args(ws.file)
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Dir = ws.dir
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	stdout := newCappedBuffer(limit)
	stderr := newCappedBuffer(limit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return RunResult{}, fmt.Errorf("start %s: %w", args[0], err)
	}
	waitErr := cmd.Wait()

	res := RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(waitErr, cmd),
		Duration: time.Since(start),
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if waitErr != nil && res.ExitCode == 0 {
		logger.Warn(ctx, "process wait failed", zap.String("language", req.Language.ID), zap.Error(waitErr))
		res.ExitCode = -1
	}
	return res, nil
}

func exitCode(err error, cmd *exec.Cmd) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

// cappedBuffer keeps the first limit bytes written and drops the rest while
// still reporting full writes so the child never sees a broken pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int64
	truncated bool
}

func newCappedBuffer(limit int64) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - int64(b.buf.Len())
	if room <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if int64(len(p)) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + TruncationMarker
	}
	return b.buf.String()
}
