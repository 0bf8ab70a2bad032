package crestron

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// errNotAuthenticated means EnsureValid was called before any Authenticate
// supplied host and token.
var errNotAuthenticated = errors.New("not authenticated: no host/token on record")

// Upstream error source codes passed through verbatim by the hub.
const (
	CodeSessionExpired = 5001
	CodeAuth           = 5002
	CodeLogin          = 7001
	CodeShades         = 7004
	CodeThermostats    = 7007
	CodeDevices        = 8001
)

// AuthError means the login exchange failed: unreachable host, TLS failure
// or a non-2xx login response.
type AuthError struct {
	Host   string
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e == nil {
		return "authentication failed"
	}
	if e.Status != 0 {
		return fmt.Sprintf("authentication with %s failed: status %d", e.Host, e.Status)
	}
	return fmt.Sprintf("authentication with %s failed: %v", e.Host, e.Err)
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SessionExpiredError means two consecutive 401/511 responses: the session
// key obtained by re-authentication was rejected again, so the request is
// not retried further.
type SessionExpiredError struct {
	Path string
}

func (e *SessionExpiredError) Error() string {
	if e == nil {
		return "session expired"
	}
	return fmt.Sprintf("session expired and re-authentication was rejected for %s", e.Path)
}

// HubError is a structured failure reported by the hub. Code carries the
// upstream error source code verbatim when the payload supplies one.
type HubError struct {
	Status  int
	Code    int
	Message string
}

func (e *HubError) Error() string {
	if e == nil {
		return "hub error"
	}
	if e.Code != 0 {
		return fmt.Sprintf("hub error %d (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("hub error (status %d): %s", e.Status, e.Message)
}

// PartialFailureError reports a batch call that applied to some targets and
// failed for others. FailedIDs is preserved verbatim from the hub response.
type PartialFailureError struct {
	FailedIDs []int
	Message   string
}

func (e *PartialFailureError) Error() string {
	if e == nil {
		return "partial failure"
	}
	if e.Message != "" {
		return fmt.Sprintf("partial failure for ids %v: %s", e.FailedIDs, e.Message)
	}
	return fmt.Sprintf("partial failure for ids %v", e.FailedIDs)
}

// NotFoundError means the caller referenced an id unknown to the hub.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "not found"
	}
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// ValidationError describes a user-supplied invalid value, surfaced before
// any request is dispatched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TimeoutError means the bounded request deadline elapsed. Not retried:
// control calls are not guaranteed idempotent.
type TimeoutError struct {
	Path string
	Err  error
}

func (e *TimeoutError) Error() string {
	if e == nil {
		return "timeout"
	}
	return fmt.Sprintf("request to %s timed out: %v", e.Path, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TransportError covers network/TLS failures and malformed payloads.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	return fmt.Sprintf("request to %s failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
