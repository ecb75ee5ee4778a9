package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salucol/ips-admin-core/internal/adapters/session"
	"github.com/salucol/ips-admin-core/internal/domain/providers"
)

func TestMemoryStore(t *testing.T) {
	store := session.NewMemoryStore()

	t.Run("absent key yields empty string", func(t *testing.T) {
		value, err := store.Get(providers.KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(providers.KeyAccessToken, "tok-1"))
		value, err := store.Get(providers.KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", value)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(providers.KeyAccessToken))
		require.NoError(t, store.Delete(providers.KeyAccessToken))
		value, err := store.Get(providers.KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})
}
