package ipsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/domain/providers"
	"github.com/salucol/ips-admin-core/internal/infrastructure/observability"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

// Client is the gateway to the IPS backend microservices. Every call
// attaches the current bearer token and transparently recovers from access
// token expiry; callers only ever see classified *apperrors.AppError values.
type Client interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Upload(ctx context.Context, path string, files []UploadFile, fields map[string]string, out any) error

	SetAuthToken(token string) error
	ClearAuthToken() error
	ClearSession() error
}

// UploadFile is one file part of a multipart upload. Content is held in
// memory so the request can be rebuilt when it is retried after a refresh.
type UploadFile struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

// Options configures an HTTPClient. BaseURL and Store are required.
type Options struct {
	BaseURL      string
	RefreshPath  string
	Timeout      time.Duration
	ExpiryMargin time.Duration
	Store        providers.CredentialStore

	// OnUnauthenticated is invoked after the session has been cleared
	// because auth is unrecoverable (no refresh token, or refresh failed)
	OnUnauthenticated func()

	// OnSessionEvent receives session lifecycle events (refreshed, forced
	// logout) for broadcasting; may be nil
	OnSessionEvent func(entities.SessionEvent)

	Metrics *observability.Metrics

	// HTTPClient overrides the underlying transport, mainly for tests
	HTTPClient *http.Client
}

// HTTPClient implements Client against a configured base URL
type HTTPClient struct {
	baseURL           string
	refreshPath       string
	expiryMargin      time.Duration
	httpClient        *http.Client
	store             providers.CredentialStore
	onUnauthenticated func()
	onSessionEvent    func(entities.SessionEvent)
	metrics           *observability.Metrics

	// refresh state: at most one refresh call may be in flight; requests
	// that hit a 401 meanwhile park a waiter channel here and are released
	// only once that refresh settles
	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

// envelope is the uniform response shape of the backend microservices
type envelope struct {
	Success *bool           `json:"success,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Errors  json.RawMessage `json:"errors,omitempty"`
}

// NewClient creates a new backend gateway client
func NewClient(opts Options) (*HTTPClient, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if opts.RefreshPath == "" {
		opts.RefreshPath = "/auth/refresh"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.ExpiryMargin <= 0 {
		opts.ExpiryMargin = 60 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &HTTPClient{
		baseURL:           strings.TrimRight(opts.BaseURL, "/"),
		refreshPath:       opts.RefreshPath,
		expiryMargin:      opts.ExpiryMargin,
		httpClient:        httpClient,
		store:             opts.Store,
		onUnauthenticated: opts.OnUnauthenticated,
		onSessionEvent:    opts.OnSessionEvent,
		metrics:           opts.Metrics,
	}, nil
}

func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

func (c *HTTPClient) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

func (c *HTTPClient) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// Upload sends a multipart request. Same contract as the JSON verbs,
// including the refresh-and-retry path.
func (c *HTTPClient) Upload(ctx context.Context, path string, files []UploadFile, fields map[string]string, out any) error {
	mkBody := func() (io.Reader, string, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, value := range fields {
			if err := writer.WriteField(key, value); err != nil {
				return nil, "", err
			}
		}
		for _, file := range files {
			part, err := writer.CreateFormFile(file.Field, file.FileName)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(file.Content); err != nil {
				return nil, "", err
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", err
		}
		return &buf, writer.FormDataContentType(), nil
	}
	return c.do(ctx, http.MethodPost, path, mkBody, out, false)
}

// SetAuthToken stores the bearer token used for subsequent requests
func (c *HTTPClient) SetAuthToken(token string) error {
	return c.store.Set(providers.KeyAccessToken, token)
}

// ClearAuthToken removes the bearer token
func (c *HTTPClient) ClearAuthToken() error {
	return c.store.Delete(providers.KeyAccessToken)
}

// ClearSession removes the full credential triple plus the cached user
func (c *HTTPClient) ClearSession() error {
	for _, key := range []string{
		providers.KeyAccessToken,
		providers.KeyRefreshToken,
		providers.KeyTokenExpiry,
		providers.KeyUser,
	} {
		if err := c.store.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode request body", err)
		}
	}

	mkBody := func() (io.Reader, string, error) {
		if payload == nil {
			return nil, "", nil
		}
		return bytes.NewReader(payload), "application/json", nil
	}
	return c.do(ctx, method, path, mkBody, out, false)
}

// do performs one attempt. A 401 on a first attempt routes through the
// refresh protocol and retries exactly once; a 401 on a retried request
// fails immediately so a request cannot loop through refresh forever.
func (c *HTTPClient) do(ctx context.Context, method, path string, mkBody func() (io.Reader, string, error), out any, retried bool) error {
	ctx, span := observability.StartSpan(ctx, fmt.Sprintf("ipsapi %s %s", method, path))
	defer span.End()

	bodyReader, contentType, err := mkBody()
	if err != nil {
		return apperrors.NewInternalError("failed to build request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return apperrors.NewInternalError("failed to build request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())

	// The token is read at send time, never captured earlier: a request
	// queued behind a refresh must pick up the refreshed token here.
	if token, err := c.store.Get(providers.KeyAccessToken); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.RecordError(span, err)
		return apperrors.NewNetworkError("request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordError(span, err)
		return apperrors.NewNetworkError("failed to read response", err)
	}

	observability.RecordRequestMetric(ctx, c.metrics, method, path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized && !retried:
		return c.recoverUnauthorized(ctx, func(ctx context.Context) error {
			return c.do(ctx, method, path, mkBody, out, true)
		})

	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError(messageFrom(raw, "session expired"))

	case resp.StatusCode == http.StatusForbidden:
		observability.LoggerFromContext(ctx).Warn().
			Str("method", method).
			Str("path", path).
			Msg("request forbidden")
		return apperrors.NewForbiddenError(messageFrom(raw, "forbidden"))

	case resp.StatusCode >= http.StatusInternalServerError:
		observability.LoggerFromContext(ctx).Error().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("backend returned server error")
		return apperrors.NewServerError(resp.StatusCode, messageFrom(raw, "server error"))

	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return apperrors.NewValidationError(resp.StatusCode, firstNonEmpty(env.Message, env.Error, "request failed"), env.Errors)

	default:
		return decodeResponse(raw, resp.StatusCode, out)
	}
}

// recoverUnauthorized implements the single-flight refresh protocol. The
// first 401 starts the refresh; any 401 that arrives while it is in flight
// parks on a waiter channel instead of issuing a second refresh call. When
// the refresh settles, every parked request is released with the same
// outcome: retry once with the new token, or fail with the refresh error.
func (c *HTTPClient) recoverUnauthorized(ctx context.Context, resend func(context.Context) error) error {
	refreshToken, err := c.store.Get(providers.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		c.forceLogout(ctx, "no refresh token stored")
		return apperrors.NewUnauthorizedError("session expired")
	}

	c.mu.Lock()
	if c.refreshing {
		wait := make(chan error, 1)
		c.waiters = append(c.waiters, wait)
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return apperrors.NewNetworkError("cancelled while waiting for token refresh", ctx.Err())
		case err := <-wait:
			if err != nil {
				return err
			}
		}
		return resend(ctx)
	}
	c.refreshing = true
	c.mu.Unlock()

	refreshErr := c.refresh(ctx, refreshToken)
	observability.RecordRefreshMetric(ctx, c.metrics, refreshErr == nil)

	var failure error
	if refreshErr != nil {
		failure = apperrors.NewRefreshError("token refresh failed", refreshErr)
	}

	// Reset the flag and release every waiter regardless of outcome, so a
	// later 401 can start a fresh cycle.
	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, wait := range waiters {
		wait <- failure
	}

	if failure != nil {
		c.forceLogout(ctx, "token refresh failed")
		return failure
	}

	c.emit(entities.SessionEventRefreshed, "")
	return resend(ctx)
}

// refreshResponse is what the auth service returns for a refresh call
type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
}

func (c *HTTPClient) refresh(ctx context.Context, refreshToken string) error {
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("refresh endpoint returned status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		raw = env.Data
	}

	var result refreshResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if result.AccessToken == "" {
		return fmt.Errorf("refresh endpoint returned no access token")
	}

	if err := c.store.Set(providers.KeyAccessToken, result.AccessToken); err != nil {
		return err
	}
	if result.RefreshToken != "" {
		if err := c.store.Set(providers.KeyRefreshToken, result.RefreshToken); err != nil {
			return err
		}
	}
	if result.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - c.expiryMargin)
		if err := c.store.Set(providers.KeyTokenExpiry, expiresAt.Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return nil
}

func (c *HTTPClient) forceLogout(ctx context.Context, reason string) {
	if err := c.ClearSession(); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("failed to clear session")
	}
	c.emit(entities.SessionEventForcedLogout, reason)
	if c.onUnauthenticated != nil {
		c.onUnauthenticated()
	}
}

func (c *HTTPClient) emit(eventType entities.SessionEventType, reason string) {
	if c.onSessionEvent == nil {
		return
	}
	c.onSessionEvent(entities.SessionEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Reason:     reason,
		OccurredAt: time.Now(),
	})
}

// decodeResponse unwraps the backend envelope when present, otherwise
// decodes the raw body into out
func decodeResponse(raw []byte, statusCode int, out any) error {
	if len(raw) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Success != nil || len(env.Data) > 0) {
		if env.Success != nil && !*env.Success {
			return apperrors.NewValidationError(statusCode, firstNonEmpty(env.Message, env.Error, "request failed"), env.Errors)
		}
		if out == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperrors.NewInternalError("failed to decode response data", err)
		}
		return nil
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewInternalError("failed to decode response", err)
	}
	return nil
}

func messageFrom(raw []byte, fallback string) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		return firstNonEmpty(env.Message, env.Error, fallback)
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
