package crestron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// The hub expires sessions after 10 minutes; the buffer keeps us from
	// racing the hub clock on the last requests of a session.
	sessionLifetime     = 10 * time.Minute
	sessionSafetyBuffer = time.Minute
)

// Session is one authenticated hub session. It is created only by a
// successful login and replaced wholesale, never mutated.
type Session struct {
	Host      string
	Key       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func newSession(host, key string, issuedAt time.Time) Session {
	return Session{
		Host:      host,
		Key:       key,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(sessionLifetime - sessionSafetyBuffer),
	}
}

// Valid reports whether the session can still be presented to the hub.
func (s Session) Valid(now time.Time) bool {
	return s.Key != "" && now.Before(s.ExpiresAt)
}

type loginFunc func(ctx context.Context, host, token string) (string, error)

// authFlight is one in-progress login shared by every caller that needs it.
type authFlight struct {
	host    string
	done    chan struct{}
	session Session
	err     error
}

// SessionManager owns the current Session and serializes authentication:
// while a login is in flight, callers join it instead of issuing their own,
// so concurrent expiry triggers exactly one login request.
type SessionManager struct {
	login   loginFunc
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	host     string
	token    string
	current  Session
	inflight *authFlight
}

func newSessionManager(login loginFunc, timeout time.Duration, logger *slog.Logger) *SessionManager {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &SessionManager{
		login:   login,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// Authenticate exchanges the long-lived token for a fresh session and
// records host/token for later transparent re-authentication.
func (m *SessionManager) Authenticate(ctx context.Context, host, token string) (Session, error) {
	if host == "" {
		return Session{}, &ValidationError{Field: "host", Reason: "is required"}
	}
	if token == "" {
		return Session{}, &ValidationError{Field: "token", Reason: "is required"}
	}

	m.mu.Lock()
	m.host = host
	m.token = token
	flight := m.joinOrStartLocked()
	m.mu.Unlock()

	return m.wait(ctx, flight)
}

// EnsureValid returns the current session when it is still valid, otherwise
// re-authenticates with the last-known credentials.
func (m *SessionManager) EnsureValid(ctx context.Context) (Session, error) {
	m.mu.Lock()
	if m.current.Valid(m.now()) {
		session := m.current
		m.mu.Unlock()
		return session, nil
	}
	if m.host == "" || m.token == "" {
		m.mu.Unlock()
		return Session{}, &AuthError{Err: errNotAuthenticated}
	}
	flight := m.joinOrStartLocked()
	m.mu.Unlock()

	return m.wait(ctx, flight)
}

// Refresh re-authenticates after the hub rejected staleKey. When another
// caller already replaced the session, the fresh one is returned without a
// new login.
func (m *SessionManager) Refresh(ctx context.Context, staleKey string) (Session, error) {
	m.mu.Lock()
	if m.current.Key != staleKey && m.current.Valid(m.now()) {
		session := m.current
		m.mu.Unlock()
		return session, nil
	}
	if m.host == "" || m.token == "" {
		m.mu.Unlock()
		return Session{}, &AuthError{Err: errNotAuthenticated}
	}
	flight := m.joinOrStartLocked()
	m.mu.Unlock()

	return m.wait(ctx, flight)
}

// Current returns the stored session without validity checks.
func (m *SessionManager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Logout discards the stored session. The hub key simply ages out upstream.
func (m *SessionManager) Logout() {
	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()
}

func (m *SessionManager) joinOrStartLocked() *authFlight {
	if m.inflight != nil {
		return m.inflight
	}
	flight := &authFlight{host: m.host, done: make(chan struct{})}
	m.inflight = flight
	go m.run(flight, m.host, m.token)
	return flight
}

// run executes one login on a detached context so that a single caller
// abandoning its request cannot fail the flight for everyone else.
func (m *SessionManager) run(flight *authFlight, host, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	key, err := m.login(ctx, host, token)

	m.mu.Lock()
	if err == nil {
		m.current = newSession(host, key, m.now())
		flight.session = m.current
		if m.logger != nil {
			m.logger.Info("session established", "host", host, "expires_at", m.current.ExpiresAt)
		}
	} else {
		flight.err = err
		if m.logger != nil {
			m.logger.Warn("authentication failed", "host", host, "err", err)
		}
	}
	m.inflight = nil
	m.mu.Unlock()

	close(flight.done)
}

func (m *SessionManager) wait(ctx context.Context, flight *authFlight) (Session, error) {
	select {
	case <-ctx.Done():
		return Session{}, &AuthError{Host: flight.host, Err: ctx.Err()}
	case <-flight.done:
		return flight.session, flight.err
	}
}
