package crestron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSessionValid_ExpiresBeforeHubDeadline(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	session := newSession("hub.local", "key-1", issuedAt)

	if !session.Valid(issuedAt.Add(8*time.Minute + 59*time.Second)) {
		t.Fatalf("session should still be valid inside the safety window")
	}
	if session.Valid(issuedAt.Add(9*time.Minute + 1*time.Second)) {
		t.Fatalf("session should be treated as expired one minute before the hub deadline")
	}
	if (Session{}).Valid(issuedAt) {
		t.Fatalf("zero session must never be valid")
	}
}

func TestAuthenticate_ConcurrentCallersShareOneLogin(t *testing.T) {
	var logins atomic.Int32
	manager := newSessionManager(func(ctx context.Context, host, token string) (string, error) {
		logins.Add(1)
		time.Sleep(20 * time.Millisecond)
		return fmt.Sprintf("key-%d", logins.Load()), nil
	}, time.Second, nil)

	const callers = 8
	keys := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := manager.Authenticate(context.Background(), "hub.local", "token")
			keys[i] = session.Key
			errs[i] = err
		}(i)
	}
	wg.Wait()

	if got := logins.Load(); got != 1 {
		t.Fatalf("expected exactly 1 login, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if keys[i] != keys[0] {
			t.Fatalf("caller %d received key %q, caller 0 received %q", i, keys[i], keys[0])
		}
	}
}

func TestAuthenticate_FailureReachesEveryCaller(t *testing.T) {
	var logins atomic.Int32
	loginErr := errors.New("hub says no")
	manager := newSessionManager(func(ctx context.Context, host, token string) (string, error) {
		logins.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "", loginErr
	}, time.Second, nil)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = manager.Authenticate(context.Background(), "hub.local", "token")
		}(i)
	}
	wg.Wait()

	if got := logins.Load(); got != 1 {
		t.Fatalf("expected exactly 1 login, got %d", got)
	}
	for i := 0; i < callers; i++ {
		if !errors.Is(errs[i], loginErr) {
			t.Fatalf("caller %d: expected the shared login error, got %v", i, errs[i])
		}
	}
}

func TestEnsureValid_RequiresCredentials(t *testing.T) {
	manager := newSessionManager(func(ctx context.Context, host, token string) (string, error) {
		t.Fatalf("login must not run without credentials")
		return "", nil
	}, time.Second, nil)

	_, err := manager.EnsureValid(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestEnsureValid_ReauthenticatesAfterExpiry(t *testing.T) {
	var logins atomic.Int32
	manager := newSessionManager(func(ctx context.Context, host, token string) (string, error) {
		return fmt.Sprintf("key-%d", logins.Add(1)), nil
	}, time.Second, nil)

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	if _, err := manager.Authenticate(context.Background(), "hub.local", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	session, err := manager.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("ensure valid: %v", err)
	}
	if session.Key != "key-1" {
		t.Fatalf("expected cached session key-1, got %q", session.Key)
	}
	if got := logins.Load(); got != 1 {
		t.Fatalf("expected no extra login for a valid session, got %d", got)
	}

	current = current.Add(sessionLifetime)
	session, err = manager.EnsureValid(context.Background())
	if err != nil {
		t.Fatalf("ensure valid after expiry: %v", err)
	}
	if session.Key != "key-2" {
		t.Fatalf("expected fresh session key-2, got %q", session.Key)
	}
}

func TestRefresh_SkipsLoginWhenSessionAlreadyReplaced(t *testing.T) {
	manager := newSessionManager(func(ctx context.Context, host, token string) (string, error) {
		t.Fatalf("login must not run when a fresh session exists")
		return "", nil
	}, time.Second, nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return now }
	manager.host = "hub.local"
	manager.token = "token"
	manager.current = newSession("hub.local", "key-new", now)

	session, err := manager.Refresh(context.Background(), "key-old")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if session.Key != "key-new" {
		t.Fatalf("expected the already-replaced session, got %q", session.Key)
	}
}

func TestLogout_DropsSession(t *testing.T) {
	manager := newSessionManager(func(ctx context.Context, host, token string) (string, error) {
		return "key-1", nil
	}, time.Second, nil)

	if _, err := manager.Authenticate(context.Background(), "hub.local", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	manager.Logout()
	if manager.Current().Key != "" {
		t.Fatalf("expected no session after logout")
	}
}
