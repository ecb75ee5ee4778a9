package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/salucol/ips-admin-core/internal/adapters/session"
	"github.com/salucol/ips-admin-core/internal/domain/entities"
	"github.com/salucol/ips-admin-core/internal/domain/providers"
	apperrors "github.com/salucol/ips-admin-core/pkg/errors"
)

func TestAuthService_Login(t *testing.T) {
	t.Run("persists the credential triple and the user profile", func(t *testing.T) {
		client := new(mockClient)
		store := session.NewMemoryStore()
		service := NewAuthService(client, store, nil, "", "", "", time.Minute)

		client.On("Post", mock.Anything, "/auth/login",
			map[string]string{"email": "ana@salucol.co", "password": "secret"}, mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(3).(*loginResponse)
				out.AccessToken = "tok-1"
				out.RefreshToken = "ref-1"
				out.ExpiresIn = 900
				out.User = entities.User{ID: "u1", Email: "ana@salucol.co", FullName: "Ana Pérez", Role: "admin"}
			}).
			Return(nil)
		client.On("SetAuthToken", "tok-1").Return(nil)

		user, err := service.Login(context.Background(), "ana@salucol.co", "secret")

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)

		refresh, _ := store.Get(providers.KeyRefreshToken)
		assert.Equal(t, "ref-1", refresh)

		rawExpiry, _ := store.Get(providers.KeyTokenExpiry)
		expiry, err := time.Parse(time.RFC3339, rawExpiry)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(900*time.Second-time.Minute), expiry, 5*time.Second)

		rawUser, _ := store.Get(providers.KeyUser)
		var cached entities.User
		require.NoError(t, json.Unmarshal([]byte(rawUser), &cached))
		assert.Equal(t, "Ana Pérez", cached.FullName)

		client.AssertExpectations(t)
	})

	t.Run("a response without tokens is an internal error", func(t *testing.T) {
		client := new(mockClient)
		store := session.NewMemoryStore()
		service := NewAuthService(client, store, nil, "", "", "", time.Minute)

		client.On("Post", mock.Anything, "/auth/login", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(3).(*loginResponse)
				out.User = entities.User{ID: "u1"}
			}).
			Return(nil)

		_, err := service.Login(context.Background(), "ana@salucol.co", "secret")

		require.Error(t, err)
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
		client.AssertNotCalled(t, "SetAuthToken")

		refresh, _ := store.Get(providers.KeyRefreshToken)
		assert.Empty(t, refresh)
	})

	t.Run("backend rejection is returned untouched", func(t *testing.T) {
		client := new(mockClient)
		service := NewAuthService(client, session.NewMemoryStore(), nil, "", "", "", time.Minute)

		client.On("Post", mock.Anything, "/auth/login", mock.Anything, mock.Anything).
			Return(apperrors.NewUnauthorizedError("invalid credentials"))

		_, err := service.Login(context.Background(), "ana@salucol.co", "wrong")

		require.Error(t, err)
		assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	})
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("clears the local session even when the backend call fails", func(t *testing.T) {
		client := new(mockClient)
		service := NewAuthService(client, session.NewMemoryStore(), nil, "", "", "", time.Minute)

		client.On("Post", mock.Anything, "/auth/logout", nil, nil).
			Return(errors.New("connection refused"))
		client.On("ClearSession").Return(nil)

		err := service.Logout(context.Background())

		require.NoError(t, err)
		client.AssertExpectations(t)
	})
}

func TestAuthService_CurrentUser(t *testing.T) {
	t.Run("serves the cached profile without a backend call", func(t *testing.T) {
		client := new(mockClient)
		store := session.NewMemoryStore()
		service := NewAuthService(client, store, nil, "", "", "", time.Minute)

		raw, _ := json.Marshal(entities.User{ID: "u1", FullName: "Ana Pérez"})
		require.NoError(t, store.Set(providers.KeyUser, string(raw)))

		user, err := service.CurrentUser(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "Ana Pérez", user.FullName)
		client.AssertNotCalled(t, "Get")
	})

	t.Run("falls back to the auth service and refills the cache", func(t *testing.T) {
		client := new(mockClient)
		store := session.NewMemoryStore()
		service := NewAuthService(client, store, nil, "", "", "", time.Minute)

		client.On("Get", mock.Anything, "/auth/me", mock.Anything).
			Run(func(args mock.Arguments) {
				out := args.Get(2).(*entities.User)
				out.ID = "u1"
				out.FullName = "Ana Pérez"
			}).
			Return(nil)

		user, err := service.CurrentUser(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)

		raw, _ := store.Get(providers.KeyUser)
		assert.Contains(t, raw, "Ana Pérez")
	})
}
