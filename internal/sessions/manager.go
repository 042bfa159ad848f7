package sessions

import (
	"context"
	"errors"
	"strings"
	"time"

	"codeberg.org/forgeui/server/internal/history"
	"github.com/google/uuid"
)

// interval between expired session sweeps
const cleanupInterval = 5 * time.Minute

// returns a new session manager
func NewManager(ttl time.Duration) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}

	// start cleanup goroutine
	go m.cleanupExpiredSessions(cleanupInterval)

	return m
}

// returns a new random session ID
func GenerateSessionID() string {
	return uuid.NewString()
}

// reports whether id looks like a session ID
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// creates a new session
func (m *Manager) CreateSession() *Session {
	now := time.Now()
	session := &Session{
		ID:           GenerateSessionID(),
		History:      history.New(),
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

// retrieves a session by ID
func (m *Manager) GetSession(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, false
	}

	// check if expired
	if time.Now().After(session.ExpiresAt) {
		return nil, false
	}

	return session, true
}

// returns the session for id, creating it when missing or expired.
// an empty id always creates a new session
func (m *Manager) GetOrCreate(sessionID string) (*Session, error) {
	if sessionID == "" {
		return m.CreateSession(), nil
	}

	if !ValidID(sessionID) {
		return nil, ErrInvalidID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()

	if session, exists := m.sessions[sessionID]; exists && now.Before(session.ExpiresAt) {
		session.LastActivity = now
		session.ExpiresAt = now.Add(m.ttl)
		return session, nil
	}

	session := &Session{
		ID:           sessionID,
		History:      history.New(),
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(m.ttl),
	}
	m.sessions[sessionID] = session

	return session, nil
}

// starts a generation run, cancelling any run still in flight for the
// session. the returned context ends after timeout or when superseded;
// context.Cause reports ErrSuperseded, ErrCancelled or ErrSessionExpired
func (m *Manager) Begin(parent context.Context, sessionID string, timeout time.Duration) (context.Context, Token, error) {
	session, err := m.GetOrCreate(sessionID)
	if err != nil {
		return nil, Token{}, err
	}

	ctx, cancel := withDeadline(parent, timeout)

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.cancel != nil {
		session.cancel(ErrSuperseded)
	}

	session.generation++
	session.cancel = cancel

	return ctx, Token{SessionID: session.ID, Generation: session.generation, cancel: cancel}, nil
}

// reports whether tok is still the latest run of its session
func (m *Manager) IsCurrent(tok Token) bool {
	session, ok := m.GetSession(tok.SessionID)
	if !ok {
		return false
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	return session.generation == tok.Generation
}

// ends a run. the entry is recorded only when the run is still current;
// the return value reports whether it was
func (m *Manager) Finish(tok Token, entry *history.Entry) bool {
	if tok.cancel != nil {
		defer tok.cancel(nil)
	}

	session, ok := m.GetSession(tok.SessionID)
	if !ok {
		return false
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.generation != tok.Generation {
		return false
	}

	session.cancel = nil

	if entry != nil {
		session.History.Add(*entry)
	}

	return true
}

// aborts the in-flight run of a session, if any
func (m *Manager) Cancel(sessionID string) bool {
	session, ok := m.GetSession(sessionID)
	if !ok {
		return false
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.cancel == nil {
		return false
	}

	session.cancel(ErrCancelled)
	session.cancel = nil
	session.generation++

	return true
}

// removes a session, aborting its in-flight run
func (m *Manager) DeleteSession(sessionID string) {
	m.mu.Lock()
	session, exists := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if exists {
		session.abort()
	}
}

// returns the number of active sessions
func (m *Manager) GetSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// stops the cleanup goroutine
func (m *Manager) Close() {
	m.once.Do(func() {
		close(m.stop)
	})
}

// runs periodically to remove expired sessions
func (m *Manager) cleanupExpiredSessions(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired(time.Now())
		case <-m.stop:
			return
		}
	}
}

func (m *Manager) removeExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0

	for id, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, id)
			session.abort()
			removed++
		}
	}

	return removed
}

func (s *Session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel(ErrSessionExpired)
		s.cancel = nil
	}
}

// returns a context cancelled by the returned func or after timeout
func withDeadline(parent context.Context, timeout time.Duration) (context.Context, context.CancelCauseFunc) {
	ctx, cancelCause := context.WithCancelCause(parent)
	if timeout <= 0 {
		return ctx, cancelCause
	}

	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)

	return ctx, func(cause error) {
		cancelCause(cause)
		cancelTimeout()
	}
}

// names why a run ended early: "cancelled" after Cancel, "superseded"
// otherwise
func Reason(ctx context.Context) string {
	if errors.Is(context.Cause(ctx), ErrCancelled) {
		return "cancelled"
	}

	return "superseded"
}
