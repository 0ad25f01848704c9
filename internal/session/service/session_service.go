package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"codefix/internal/session/model"
	"codefix/internal/session/repository"
	appErr "codefix/pkg/errors"
	"codefix/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxAge          = 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// Config controls session retention.
type Config struct {
	Backend         string                   `yaml:"backend"`
	MaxAge          time.Duration            `yaml:"maxAge"`
	CleanupInterval time.Duration            `yaml:"cleanupInterval"`
	Archive         repository.ArchiveConfig `yaml:"archive"`
}

// Archiver snapshots a session before it is deleted and reads it back on
// restore.
type Archiver interface {
	Archive(ctx context.Context, session *model.Session) error
	Load(ctx context.Context, id string) (*model.Session, error)
}

// CreateInput carries the fields of a new session. Empty fields get defaults.
type CreateInput struct {
	ID       string
	Code     string
	Language string
	Metadata map[string]any
}

// UpdateInput carries the fields to change. Nil fields are left alone.
type UpdateInput struct {
	Code     *string
	Language *string
	Metadata *map[string]any
}

// Option customizes a SessionService.
type Option func(*SessionService)

// WithArchiver archives sessions before deletion and enables Restore.
func WithArchiver(a Archiver) Option {
	return func(s *SessionService) { s.archiver = a }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *SessionService) { s.now = now }
}

// SessionService manages sessions and the background janitor that expires
// old ones.
type SessionService struct {
	repo     *repository.SessionRepository
	archiver Archiver
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionService creates the service. Call Start to run the janitor.
func NewSessionService(repo *repository.SessionRepository, cfg Config, opts ...Option) *SessionService {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaultCleanupInterval
	}
	s := &SessionService{
		repo:     repo,
		maxAge:   cfg.MaxAge,
		interval: cfg.CleanupInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// NewSessionID returns an id of the form session_<unixms>_<9 chars>.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

// Create stores a new session, overwriting any session with the same id.
func (s *SessionService) Create(ctx context.Context, in CreateInput) (*model.Session, error) {
	now := s.timestamp()
	session := &model.Session{
		ID:        in.ID,
		Code:      in.Code,
		Language:  in.Language,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  in.Metadata,
	}
	if session.ID == "" {
		session.ID = NewSessionID(now)
	}
	if session.Language == "" {
		session.Language = model.DefaultLanguage
	}
	if session.Metadata == nil {
		session.Metadata = map[string]any{}
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	logger.Info(ctx, "session created", zap.String("session_id", session.ID))
	return session, nil
}

// Get returns a session or a SessionNotFound error.
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, appErr.New(appErr.SessionNotFound)
	}
	return session, nil
}

// Update merges the provided fields and bumps UpdatedAt.
func (s *SessionService) Update(ctx context.Context, id string, in UpdateInput) (*model.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Code != nil {
		session.Code = *in.Code
	}
	if in.Language != nil {
		session.Language = *in.Language
	}
	if in.Metadata != nil {
		session.Metadata = *in.Metadata
		if session.Metadata == nil {
			session.Metadata = map[string]any{}
		}
	}
	session.UpdatedAt = s.timestamp()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete archives and removes a session.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, session)
}

func (s *SessionService) remove(ctx context.Context, session *model.Session) error {
	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, session); err != nil {
			logger.Warn(ctx, "archive session failed", zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	existed, err := s.repo.Delete(ctx, session.ID)
	if err != nil {
		return err
	}
	if !existed {
		return appErr.New(appErr.SessionNotFound)
	}
	return nil
}

// Restore brings an archived session back into the store. A session that is
// still live is returned unchanged.
func (s *SessionService) Restore(ctx context.Context, id string) (*model.Session, error) {
	live, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if live != nil {
		return live, nil
	}
	if s.archiver == nil {
		return nil, appErr.New(appErr.SessionNotFound)
	}
	session, err := s.archiver.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Metadata == nil {
		session.Metadata = map[string]any{}
	}
	session.UpdatedAt = s.timestamp()
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}
	logger.Info(ctx, "session restored", zap.String("session_id", session.ID))
	return session, nil
}

// List returns every session ordered by creation time.
func (s *SessionService) List(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// CleanupOlderThan deletes sessions created before now-age and returns how
// many were removed.
func (s *SessionService) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-age)
	deleted := 0
	for _, session := range sessions {
		if !session.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.remove(ctx, session); err != nil {
			if appErr.Is(err, appErr.SessionNotFound) {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// Start launches the janitor. Calling Start on a running service is a no-op.
func (s *SessionService) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.janitor(runCtx, s.done)
}

// Stop halts the janitor and waits for it to exit.
func (s *SessionService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *SessionService) janitor(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CleanupOlderThan(ctx, s.maxAge)
			if err != nil {
				logger.Warn(ctx, "session cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info(ctx, "expired sessions removed", zap.Int("count", n))
			}
		}
	}
}
