package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pdfprep/assistant"
)

const sessionCookie = "pdfprep_session"

const (
	// DefaultSessionMaxAge is how long a session may sit idle before it and
	// its document are dropped.
	DefaultSessionMaxAge = 30 * time.Minute

	// DefaultMaxSessions limits live sessions; the least recently used one is
	// dropped to make room.
	DefaultMaxSessions = 1000
)

type sessionEntry struct {
	session      *assistant.Session
	lastAccessed time.Time
}

// SessionStore keeps one assistant.Session per browser session.
type SessionStore struct {
	newSession  func() *assistant.Session
	maxAge      time.Duration
	maxSessions int
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

// NewSessionStore creates a store. Non-positive maxAge or maxSessions fall
// back to the defaults.
func NewSessionStore(newSession func() *assistant.Session, maxAge time.Duration, maxSessions int, logger *zap.Logger) *SessionStore {
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		newSession:  newSession,
		maxAge:      maxAge,
		maxSessions: maxSessions,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*sessionEntry),
	}
}

// Get returns the session with id, creating it (under a fresh id) if id is
// unknown or expired. The returned id is the one the client should keep using.
func (s *SessionStore) Get(id string) (string, *assistant.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.sessions[id]; ok {
		if !s.expired(e, now) {
			e.lastAccessed = now
			return id, e.session
		}
		delete(s.sessions, id)
	}

	if len(s.sessions) >= s.maxSessions {
		s.sweepLocked(now)
	}
	for len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}

	id = uuid.NewString()
	sess := s.newSession()
	s.sessions[id] = &sessionEntry{session: sess, lastAccessed: now}
	return id, sess
}

// Sweep drops every session idle for longer than the max age and returns
// how many were dropped.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("expired sessions", zap.Int("dropped", n), zap.Int("live", s.Len()))
			}
		}
	}
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(e *sessionEntry, now time.Time) bool {
	return now.Sub(e.lastAccessed) > s.maxAge
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	dropped := 0
	for id, e := range s.sessions {
		if s.expired(e, now) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

func (s *SessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if oldestID == "" || e.lastAccessed.Before(oldest) {
			oldestID, oldest = id, e.lastAccessed
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
		s.logger.Debug("evicted least recently used session")
	}
}

// sessionFor resolves the request's session and refreshes its cookie.
func (s *SessionStore) sessionFor(w http.ResponseWriter, r *http.Request) *assistant.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	id, sess := s.Get(id)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.maxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}
