package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"codefix/internal/common/cache"
	"codefix/internal/session/model"
	appErr "codefix/pkg/errors"
	"codefix/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	sessionKeyPrefix = "session:"
	sessionIndexKey  = "session:index"
)

// SessionRepository stores sessions as JSON values in a cache backend and
// tracks their ids in an index set.
type SessionRepository struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewSessionRepository creates a repository. A zero ttl keeps sessions until
// they are deleted.
func NewSessionRepository(cacheClient cache.Cache, ttl time.Duration) *SessionRepository {
	return &SessionRepository{cache: cacheClient, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *SessionRepository) ready() error {
	if r.cache == nil {
		return appErr.New(appErr.CacheError).WithMessage("cache client is not initialized")
	}
	return nil
}

// Save creates or overwrites a session.
func (r *SessionRepository) Save(ctx context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return appErr.ValidationError("id", "required")
	}
	if err := r.ready(); err != nil {
		return err
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.cache.Set(ctx, sessionKey(session.ID), string(data), r.ttl); err != nil {
		return appErr.Wrapf(err, appErr.SessionStoreFailed, "store session failed")
	}
	if err := r.cache.SAdd(ctx, sessionIndexKey, session.ID); err != nil {
		return appErr.Wrapf(err, appErr.SessionStoreFailed, "index session failed")
	}
	return nil
}

// Get returns the session or nil when it does not exist.
func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	if id == "" {
		return nil, nil
	}
	if err := r.ready(); err != nil {
		return nil, err
	}
	val, err := r.cache.Get(ctx, sessionKey(id))
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.SessionStoreFailed, "load session failed")
	}
	if val == "" {
		return nil, nil
	}
	var session model.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, appErr.Wrapf(err, appErr.SessionStoreFailed, "decode session failed")
	}
	return &session, nil
}

// Delete removes a session and reports whether it existed.
func (r *SessionRepository) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	if err := r.ready(); err != nil {
		return false, err
	}
	n, err := r.cache.Del(ctx, sessionKey(id))
	if err != nil {
		return false, appErr.Wrapf(err, appErr.SessionStoreFailed, "delete session failed")
	}
	if err := r.cache.SRem(ctx, sessionIndexKey, id); err != nil {
		logger.Warn(ctx, "remove session from index failed", zap.String("session_id", id), zap.Error(err))
	}
	return n > 0, nil
}

// List returns every indexed session in no particular order. Index entries
// whose value has expired are pruned.
func (r *SessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ids, err := r.cache.SMembers(ctx, sessionIndexKey)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.SessionStoreFailed, "list sessions failed")
	}
	sessions := make([]*model.Session, 0, len(ids))
	for _, id := range ids {
		session, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if session == nil {
			if err := r.cache.SRem(ctx, sessionIndexKey, id); err != nil {
				logger.Warn(ctx, "prune session index failed", zap.String("session_id", id), zap.Error(err))
			}
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Close releases the cache backend.
func (r *SessionRepository) Close() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Close()
}
