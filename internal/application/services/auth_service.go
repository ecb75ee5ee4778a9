package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/domain/providers"
	"github.com/salucol/ips-admin-core/internal/infrastructure/clients/ipsapi"
	"github.com/salucol/ips-admin-core/internal/infrastructure/observability"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

// loginResponse is the auth service's login payload
type loginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int64         `json:"expiresIn,omitempty"`
	User         entities.User `json:"user"`
}

// AuthService bootstraps and tears down console sessions. After login the
// refresh protocol inside the client keeps the session alive on its own.
type AuthService struct {
	client       ipsapi.Client
	store        providers.CredentialStore
	bus          providers.EventBus
	eventChannel string
	loginPath    string
	profilePath  string
	expiryMargin time.Duration
}

// NewAuthService creates a new auth service. bus may be nil when session
// events are not broadcast.
func NewAuthService(
	client ipsapi.Client,
	store providers.CredentialStore,
	bus providers.EventBus,
	eventChannel string,
	loginPath string,
	profilePath string,
	expiryMargin time.Duration,
) *AuthService {
	if loginPath == "" {
		loginPath = "/auth/login"
	}
	if profilePath == "" {
		profilePath = "/auth/me"
	}
	if expiryMargin <= 0 {
		expiryMargin = 60 * time.Second
	}
	return &AuthService{
		client:       client,
		store:        store,
		bus:          bus,
		eventChannel: eventChannel,
		loginPath:    loginPath,
		profilePath:  profilePath,
		expiryMargin: expiryMargin,
	}
}

// Login authenticates against the auth microservice and persists the
// credential triple plus the user profile
func (s *AuthService) Login(ctx context.Context, email, password string) (*entities.User, error) {
	var result loginResponse
	err := s.client.Post(ctx, s.loginPath, map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		return nil, apperrors.NewInternalError("login response is missing tokens", nil)
	}

	if err := s.client.SetAuthToken(result.AccessToken); err != nil {
		return nil, err
	}
	if err := s.store.Set(providers.KeyRefreshToken, result.RefreshToken); err != nil {
		return nil, err
	}
	if result.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(result.ExpiresIn)*time.Second - s.expiryMargin)
		if err := s.store.Set(providers.KeyTokenExpiry, expiresAt.Format(time.RFC3339)); err != nil {
			return nil, err
		}
	}
	if raw, err := json.Marshal(result.User); err == nil {
		if err := s.store.Set(providers.KeyUser, string(raw)); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, entities.SessionEventLogin, "")
	return &result.User, nil
}

// Logout tears the session down. The backend call is best effort; local
// credentials are cleared regardless.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
	}
	if err := s.client.ClearSession(); err != nil {
		return err
	}
	s.publish(ctx, entities.SessionEventLogout, "")
	return nil
}

// CurrentUser returns the cached user profile, falling back to the auth
// service when the cache is empty
func (s *AuthService) CurrentUser(ctx context.Context) (*entities.User, error) {
	if raw, err := s.store.Get(providers.KeyUser); err == nil && raw != "" {
		var user entities.User
		if err := json.Unmarshal([]byte(raw), &user); err == nil {
			return &user, nil
		}
	}

	var user entities.User
	if err := s.client.Get(ctx, s.profilePath, &user); err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(user); err == nil {
		_ = s.store.Set(providers.KeyUser, string(raw))
	}
	return &user, nil
}

func (s *AuthService) publish(ctx context.Context, eventType entities.SessionEventType, reason string) {
	if s.bus == nil {
		return
	}
	event := &entities.SessionEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Reason:     reason,
		OccurredAt: time.Now(),
	}
	if err := s.bus.Publish(ctx, s.eventChannel, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to publish session event")
	}
}
