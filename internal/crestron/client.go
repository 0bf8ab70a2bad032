package crestron

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 4 << 20

	headerAuthToken = "Crestron-RestAPI-AuthToken"
	headerAuthKey   = "Crestron-RestAPI-AuthKey"
)

// Config defines one hub connection profile.
type Config struct {
	Timeout time.Duration
	// Crestron Home controllers ship self-signed certificates, so TLS
	// verification is usually disabled against them.
	InsecureSkipVerify bool
}

// Result is the classified outcome of a hub call that was not a failure.
// Partial outcomes keep the failed ids exactly as the hub reported them.
type Result struct {
	Body      json.RawMessage
	Partial   bool
	FailedIDs []int
	Message   string
}

// Client issues authenticated requests against a Crestron Home hub and
// classifies its heterogeneous responses.
type Client struct {
	httpClient *http.Client
	sessions   *SessionManager
	logger     *slog.Logger
}

// NewClient builds a hub client with its own session manager.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := http.DefaultTransport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		cloned := base.Clone()
		cloned.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec
		transport = cloned
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		logger:     logger,
	}
	client.sessions = newSessionManager(client.login, timeout, logger)
	return client
}

// Sessions exposes the session manager for explicit authentication.
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// Authenticate establishes a session against host with the given token.
func (c *Client) Authenticate(ctx context.Context, host, token string) (Session, error) {
	return c.sessions.Authenticate(ctx, host, token)
}

// Do performs one authenticated call. A 401/511 triggers exactly one
// re-authentication and one retry; a second 401/511 surfaces as
// SessionExpiredError. Timeouts and transport failures are never retried
// because control calls are not guaranteed idempotent.
func (c *Client) Do(ctx context.Context, method, path string, body any) (Result, error) {
	session, err := c.sessions.EnsureValid(ctx)
	if err != nil {
		return Result{}, err
	}

	result, status, err := c.roundTrip(ctx, session, method, path, body)
	if status != http.StatusUnauthorized && status != http.StatusNetworkAuthenticationRequired {
		return result, err
	}

	if c.logger != nil {
		c.logger.Info("session rejected, re-authenticating", "path", path, "status", status)
	}
	session, err = c.sessions.Refresh(ctx, session.Key)
	if err != nil {
		return Result{}, err
	}

	result, status, err = c.roundTrip(ctx, session, method, path, body)
	if status == http.StatusUnauthorized || status == http.StatusNetworkAuthenticationRequired {
		return Result{}, &SessionExpiredError{Path: path}
	}
	return result, err
}

// login exchanges the long-lived token for a session key.
func (c *Client) login(ctx context.Context, host, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL(host)+"/login", nil)
	if err != nil {
		return "", &AuthError{Host: host, Err: err}
	}
	req.Header.Set(headerAuthToken, token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Host: host, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{Host: host, Status: resp.StatusCode}
	}

	var payload struct {
		AuthKey string `json:"AuthKey"`
		Version string `json:"version"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return "", &AuthError{Host: host, Err: fmt.Errorf("decode login response: %w", err)}
	}
	if payload.AuthKey == "" {
		return "", &AuthError{Host: host, Err: fmt.Errorf("login response carries no AuthKey")}
	}
	return payload.AuthKey, nil
}

// roundTrip performs one HTTP exchange and classifies the response. The
// returned status is non-zero only when a response was received; 401/511
// are reported through it without an error so Do can run the reauth
// protocol.
func (c *Client) roundTrip(ctx context.Context, session Session, method, path string, body any) (Result, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return Result{}, 0, &TransportError{Path: path, Err: fmt.Errorf("encode request body: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL(session.Host)+path, reader)
	if err != nil {
		return Result{}, 0, &TransportError{Path: path, Err: err}
	}
	req.Header.Set(headerAuthKey, session.Key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Result{}, 0, &TimeoutError{Path: path, Err: err}
		}
		return Result{}, 0, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{}, resp.StatusCode, &TransportError{Path: path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNetworkAuthenticationRequired {
		return Result{}, resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, resp.StatusCode, hubErrorFromBody(resp.StatusCode, raw)
	}

	result, err := classifyBody(path, raw)
	return result, resp.StatusCode, err
}

// statusEnvelope is the common shape of control responses. Discovery
// payloads carry no status field at all.
type statusEnvelope struct {
	Status       string          `json:"status"`
	ErrorCode    int             `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
	ErrorDevices json.RawMessage `json:"errorDevices"`
}

func classifyBody(path string, raw []byte) (Result, error) {
	var envelope statusEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Result{}, &TransportError{Path: path, Err: fmt.Errorf("malformed response body: %w", err)}
	}

	switch envelope.Status {
	case "", "success":
		return Result{Body: raw}, nil
	case "partial":
		return Result{
			Body:      raw,
			Partial:   true,
			FailedIDs: decodeErrorDevices(envelope.ErrorDevices),
			Message:   envelope.ErrorMessage,
		}, nil
	case "failure":
		return Result{}, &HubError{Status: http.StatusOK, Code: envelope.ErrorCode, Message: envelope.ErrorMessage}
	default:
		return Result{}, &TransportError{Path: path, Err: fmt.Errorf("unknown response status %q", envelope.Status)}
	}
}

// decodeErrorDevices accepts both the bare-id form [2, 5] and the object
// form [{"id": 2}] seen across hub firmware versions.
func decodeErrorDevices(raw json.RawMessage) []int {
	if len(raw) == 0 {
		return nil
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids
	}
	var objects []struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(raw, &objects); err == nil {
		ids = make([]int, 0, len(objects))
		for _, object := range objects {
			ids = append(ids, object.ID)
		}
		return ids
	}
	return nil
}

func hubErrorFromBody(status int, raw []byte) error {
	var payload struct {
		Error        string `json:"error"`
		Message      string `json:"message"`
		ErrorCode    int    `json:"errorCode"`
		ErrorMessage string `json:"errorMessage"`
	}
	herr := &HubError{Status: status}
	if err := json.Unmarshal(raw, &payload); err == nil {
		herr.Code = payload.ErrorCode
		switch {
		case payload.ErrorMessage != "":
			herr.Message = payload.ErrorMessage
		case payload.Message != "":
			herr.Message = payload.Message
		default:
			herr.Message = payload.Error
		}
	}
	if herr.Message == "" {
		herr.Message = strings.TrimSpace(string(raw))
	}
	return herr
}

func baseURL(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + "/cws/api"
}
