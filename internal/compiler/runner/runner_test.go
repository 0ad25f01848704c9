//go:build unix

package runner_test

import (
	"context"
	"os"
	"os/exec"
	"testing"
	"time"

	"codefix/internal/compiler/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shell = runner.LanguageSpec{ID: "sh", Name: "Shell", Extension: ".sh", Command: []string{"sh", runner.FilePlaceholder}}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace should be removed")
}

func TestRunCapturesOutput(t *testing.T) {
	requireShell(t)
	root := t.TempDir()
	r := runner.NewProcessRunner(root)

	res, err := r.Run(context.Background(), runner.RunRequest{
		Language: shell,
		Source:   "echo hello\necho oops >&2\n",
		Timeout:  5 * time.Second,
	})

	require.NoError(t, err)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
	assertEmptyDir(t, root)
}

func TestRunReportsExitCode(t *testing.T) {
	requireShell(t)
	root := t.TempDir()

	res, err := runner.NewProcessRunner(root).Run(context.Background(), runner.RunRequest{
		Language: shell,
		Source:   "exit 3\n",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Empty(t, res.Stderr)
	assertEmptyDir(t, root)
}

func TestRunSourceFileName(t *testing.T) {
	requireShell(t)

	res, err := runner.NewProcessRunner(t.TempDir()).Run(context.Background(), runner.RunRequest{
		Language: shell,
		Source:   "ls\n",
	})

	require.NoError(t, err)
	assert.Regexp(t, `^code_[0-9a-f-]{36}\.sh\n$`, res.Stdout)
}

func TestRunTimeout(t *testing.T) {
	requireShell(t)
	root := t.TempDir()

	start := time.Now()
	res, err := runner.NewProcessRunner(root).Run(context.Background(), runner.RunRequest{
		Language: shell,
		Source:   "sleep 10\n",
		Timeout:  200 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 5*time.Second)
	assertEmptyDir(t, root)
}

func TestRunTruncatesOutput(t *testing.T) {
	requireShell(t)

	res, err := runner.NewProcessRunner(t.TempDir()).Run(context.Background(), runner.RunRequest{
		Language:       shell,
		Source:         "printf abcdefghij\n",
		MaxOutputBytes: 4,
	})

	require.NoError(t, err)
	assert.Equal(t, "abcd"+runner.TruncationMarker, res.Stdout)
}

func TestRunStartFailure(t *testing.T) {
	root := t.TempDir()
	missing := runner.LanguageSpec{ID: "missing", Command: []string{"codefix-no-such-binary"}}

	_, err := runner.NewProcessRunner(root).Run(context.Background(), runner.RunRequest{
		Language: missing,
		Source:   "x",
	})

	require.Error(t, err)
	assertEmptyDir(t, root)
}

func TestRunCanceledContext(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.NewProcessRunner(t.TempDir()).Run(ctx, runner.RunRequest{
		Language: shell,
		Source:   "echo hi\n",
	})

	assert.Error(t, err)
}
