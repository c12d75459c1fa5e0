// Package memory provides the in-memory session repository. Sessions
// are process-lifetime state; there is intentionally no durable backend.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quantlab/incident-drill/internal/drill"
	"github.com/quantlab/incident-drill/internal/pkg/metrics"
)

// Config contains store configuration.
type Config struct {
	TTL           time.Duration // idle time before a session is swept
	MaxSessions   int           // 0 means unlimited
	SweepInterval time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           2 * time.Hour,
		MaxSessions:   1000,
		SweepInterval: time.Minute,
	}
}

// Store keeps drill sessions in a map guarded by a RWMutex. A janitor
// goroutine sweeps sessions idle for longer than the TTL.
//
// The store never shares session pointers with callers: Create and
// Update store copies, Get returns one. A request therefore mutates its
// own snapshot, and neither the janitor nor a concurrent request can
// observe a partial write.
type Store struct {
	config Config

	mu       sync.RWMutex
	sessions map[string]*drill.Session

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStore creates an in-memory session store.
func NewStore(config Config) *Store {
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultConfig().SweepInterval
	}
	if config.TTL <= 0 {
		config.TTL = DefaultConfig().TTL
	}
	return &Store{
		config:   config,
		sessions: make(map[string]*drill.Session),
		stopCh:   make(chan struct{}),
	}
}

// Create stores a new session.
func (s *Store) Create(_ context.Context, sess *drill.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.MaxSessions > 0 && len(s.sessions) >= s.config.MaxSessions {
		return drill.ErrTooManySessions
	}

	s.sessions[sess.ID] = sess.Clone()
	metrics.RecordActiveSessions(len(s.sessions))
	return nil
}

// Get retrieves a copy of a session by id.
func (s *Store) Get(_ context.Context, id string) (*drill.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, drill.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Update replaces a stored session with a copy of sess.
func (s *Store) Update(_ context.Context, sess *drill.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		return drill.ErrSessionNotFound
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Delete removes a session.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return drill.ErrSessionNotFound
	}
	delete(s.sessions, id)
	metrics.RecordActiveSessions(len(s.sessions))
	return nil
}

// Count returns the number of stored sessions.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Start launches the TTL janitor.
func (s *Store) Start(ctx context.Context) {
	slog.Info("starting session janitor",
		"ttl", s.config.TTL,
		"sweep_interval", s.config.SweepInterval,
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop gracefully stops the janitor.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	slog.Info("session janitor stopped")
}

func (s *Store) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep drops sessions idle for longer than the TTL.
func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired int
	for id, sess := range s.sessions {
		if now.Sub(sess.UpdatedAt) > s.config.TTL {
			delete(s.sessions, id)
			expired++
		}
	}

	if expired > 0 {
		slog.Debug("swept expired sessions", "count", expired, "remaining", len(s.sessions))
		metrics.RecordActiveSessions(len(s.sessions))
	}
}
