package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreload(t *testing.T) {
	t.Run("disabled config is a no-op", func(t *testing.T) {
		result, err := Preload(context.Background(), VaultConfig{Enabled: false})
		require.NoError(t, err)
		assert.False(t, result.Enabled)
	})

	t.Run("exports KV v2 secrets into the environment", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/secret/data/ips/console", r.URL.Path)
			assert.Equal(t, "test-token", r.Header.Get("X-Vault-Token"))
			w.Write([]byte(`{"data":{"data":{"IPS_TEST_SECRET_A":"from-vault","IPS_TEST_SECRET_B":"also-vault"}}}`))
		}))
		defer server.Close()

		t.Setenv("IPS_TEST_SECRET_A", "already-set")
		t.Setenv("IPS_TEST_SECRET_B", "")

		result, err := Preload(context.Background(), VaultConfig{
			Enabled:   true,
			Addr:      server.URL,
			Token:     "test-token",
			Mount:     "secret",
			Path:      "ips/console",
			KVVersion: 2,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Loaded)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, "already-set", getenv(t, "IPS_TEST_SECRET_A"))
		assert.Equal(t, "also-vault", getenv(t, "IPS_TEST_SECRET_B"))
	})

	t.Run("overwrite replaces existing variables", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/secret/ips/console", r.URL.Path)
			w.Write([]byte(`{"data":{"IPS_TEST_SECRET_C":"vault-wins"}}`))
		}))
		defer server.Close()

		t.Setenv("IPS_TEST_SECRET_C", "env-value")

		result, err := Preload(context.Background(), VaultConfig{
			Enabled:   true,
			Addr:      server.URL,
			Token:     "test-token",
			Mount:     "secret",
			Path:      "ips/console",
			KVVersion: 1,
			Overwrite: true,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Loaded)
		assert.Equal(t, "vault-wins", getenv(t, "IPS_TEST_SECRET_C"))
	})

	t.Run("incomplete config fails", func(t *testing.T) {
		_, err := Preload(context.Background(), VaultConfig{Enabled: true, Addr: "http://vault"})
		require.Error(t, err)
	})

	t.Run("non-2xx response fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "permission denied", http.StatusForbidden)
		}))
		defer server.Close()

		_, err := Preload(context.Background(), VaultConfig{
			Enabled: true,
			Addr:    server.URL,
			Token:   "test-token",
			Mount:   "secret",
			Path:    "ips/console",
		})
		require.Error(t, err)
	})
}

func getenv(t *testing.T, key string) string {
	t.Helper()
	return os.Getenv(key)
}
