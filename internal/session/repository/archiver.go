package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"codefix/internal/common/storage"
	"codefix/internal/session/model"
	appErr "codefix/pkg/errors"

	"github.com/klauspost/compress/zstd"
)

const (
	archiveExt         = ".json.zst"
	archiveContentType = "application/zstd"
	defaultPrefix      = "sessions"
)

// ArchiveConfig controls where deleted sessions are kept.
type ArchiveConfig struct {
	Enabled bool                `yaml:"enabled"`
	Bucket  string              `yaml:"bucket"`
	Prefix  string              `yaml:"prefix"`
	MinIO   storage.MinIOConfig `yaml:"minio"`
}

// Archiver writes zstd-compressed session snapshots to object storage.
type Archiver struct {
	store  storage.ObjectStorage
	bucket string
	prefix string
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// NewArchiver creates an archiver. The bucket is not touched until Prepare.
func NewArchiver(store storage.ObjectStorage, bucket, prefix string) (*Archiver, error) {
	if store == nil {
		return nil, fmt.Errorf("object storage is required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder failed: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder failed: %w", err)
	}
	return &Archiver{store: store, bucket: bucket, prefix: prefix, enc: enc, dec: dec}, nil
}

// Prepare makes sure the bucket exists.
func (a *Archiver) Prepare(ctx context.Context) error {
	if err := a.store.EnsureBucket(ctx, a.bucket); err != nil {
		return appErr.Wrapf(err, appErr.StorageError, "ensure archive bucket failed")
	}
	return nil
}

// ObjectKey returns the object name for a session id.
func (a *Archiver) ObjectKey(id string) string {
	return path.Join(a.prefix, id+archiveExt)
}

// Archive uploads a snapshot of session.
func (a *Archiver) Archive(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return appErr.ValidationError("id", "required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	compressed := a.enc.EncodeAll(data, nil)
	err = a.store.PutObject(ctx, a.bucket, a.ObjectKey(session.ID), bytes.NewReader(compressed), int64(len(compressed)), archiveContentType)
	if err != nil {
		return appErr.Wrapf(err, appErr.SessionArchiveError, "upload session archive failed")
	}
	return nil
}

// Load reads an archived session back. A session that was never archived
// yields SessionNotFound.
func (a *Archiver) Load(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, appErr.ValidationError("id", "required")
	}
	reader, err := a.store.GetObject(ctx, a.bucket, a.ObjectKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErr.Wrapf(err, appErr.SessionNotFound, "session %s is not archived", id)
		}
		return nil, appErr.Wrapf(err, appErr.StorageError, "open session archive failed")
	}
	defer reader.Close()

	compressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.StorageError, "read session archive failed")
	}
	data, err := a.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.SessionArchiveError, "decompress session archive failed")
	}
	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, appErr.Wrapf(err, appErr.SessionArchiveError, "decode session archive failed")
	}
	return &session, nil
}

// Close releases the codec resources.
func (a *Archiver) Close() {
	a.enc.Close()
	a.dec.Close()
}
