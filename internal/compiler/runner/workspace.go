package runner

import (
	"context"
	"os"
	"path/filepath"

	pkgerrors "codefix/pkg/errors"
	"codefix/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// workspace is a private temp dir holding one source file.
type workspace struct {
	dir  string
	file string
}

func acquireWorkspace(root, ext, source string) (*workspace, error) {
	dir, err := os.MkdirTemp(root, "codefix-run-")
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.WorkspaceFailed)
	}
	ws := &workspace{
		dir:  dir,
		file: filepath.Join(dir, "code_"+uuid.NewString()+ext),
	}
	if err := os.WriteFile(ws.file, []byte(source), 0o600); err != nil {
		ws.release(context.Background())
		return nil, pkgerrors.Wrap(err, pkgerrors.WorkspaceFailed)
	}
	return ws, nil
}

// release removes the workspace. Failures are logged, never returned.
func (w *workspace) release(ctx context.Context) {
	if err := os.RemoveAll(w.dir); err != nil {
		logger.Warn(ctx, "failed to clean up workspace", zap.String("dir", w.dir), zap.Error(err))
	}
}
