package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cvscore/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

const apiKeysPath = "secret/data/cvscore/api-keys"

// fakeVault serves the health endpoint and a single KVv2 secret
type fakeVault struct {
	*httptest.Server
	hits    atomic.Int32
	status  atomic.Int32
	keys    atomic.Value
	version atomic.Int64
}

func newFakeVault(t *testing.T, keys string, version int64) *fakeVault {
	t.Helper()
	t.Setenv("VAULT_MAX_RETRIES", "0")

	fv := &fakeVault{}
	fv.status.Store(http.StatusOK)
	fv.keys.Store(keys)
	fv.version.Store(version)

	fv.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/sys/health"):
			_, _ = w.Write([]byte(`{"initialized":true,"sealed":false,"standby":false,"version":"1.15.0"}`))
		case r.URL.Path == "/v1/"+apiKeysPath:
			fv.hits.Add(1)
			status := int(fv.status.Load())
			if status != http.StatusOK {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"errors":["boom"]}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"data":     map[string]any{"keys": fv.keys.Load().(string)},
					"metadata": map[string]any{"version": fv.version.Load()},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(fv.Close)
	return fv
}

func (fv *fakeVault) config() VaultConfig {
	return VaultConfig{
		Enabled:      true,
		Address:      fv.URL,
		Token:        "root",
		Secrets:      VaultSecrets{APIKeys: apiKeysPath},
		PollInterval: time.Minute,
	}
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{name: "int64 value", input: int64(42), expected: 42},
		{name: "int value", input: 42, expected: 42},
		{name: "float64 value", input: float64(42.0), expected: 42},
		{name: "json number", input: json.Number("7"), expected: 7},
		{name: "string value", input: "42", expected: 42},
		{name: "invalid json number", input: json.Number("4.5"), expectError: true},
		{name: "invalid string value", input: "not-a-number", expectError: true},
		{name: "unsupported type", input: []string{"42"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "test/path")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()
	t.Setenv(api.EnvVaultToken, "")

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("token from environment", func(t *testing.T) {
		t.Setenv(api.EnvVaultToken, "env-token")
		token, err := resolveVaultToken(VaultConfig{}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "env-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})

	t.Run("empty token from file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("   \n  \n"), 0600))

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestExtractSecretData(t *testing.T) {
	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    map[string]any
	}{
		{
			name: "valid KVv2 secret",
			secret: &api.Secret{Data: map[string]any{
				"data": map[string]any{"keys": "a,b"},
			}},
			expected: map[string]any{"keys": "a,b"},
		},
		{
			name:        "missing data field",
			secret:      &api.Secret{Data: map[string]any{"metadata": map[string]any{}}},
			expectError: true,
		},
		{
			name:        "data field wrong type",
			secret:      &api.Secret{Data: map[string]any{"data": "not-a-map"}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := extractSecretData(tt.secret, "secret/test")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractSecretVersion(t *testing.T) {
	_, err := extractSecretVersion(&api.Secret{Data: map[string]any{"data": map[string]any{}}}, "secret/test")
	assert.ErrorContains(t, err, "missing 'metadata' field")

	_, err = extractSecretVersion(&api.Secret{Data: map[string]any{
		"metadata": map[string]any{"other": "value"},
	}}, "secret/test")
	assert.ErrorContains(t, err, "missing 'version' field")

	version, err := extractSecretVersion(&api.Secret{Data: map[string]any{
		"metadata": map[string]any{"version": json.Number("3")},
	}}, "secret/test")
	require.NoError(t, err)
	assert.Equal(t, int64(3), version)
}

func TestAPIKeysFromSecret(t *testing.T) {
	keys, err := APIKeysFromSecret(&VaultSecret{Data: map[string]any{"keys": " k1, ,k2 "}}, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2"}, keys)

	_, err = APIKeysFromSecret(&VaultSecret{Data: map[string]any{"keys": 12}}, "p")
	assert.Error(t, err)

	_, err = APIKeysFromSecret(&VaultSecret{Data: map[string]any{}}, "p")
	assert.Error(t, err)
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Server: ServerConfig{APIKeys: []string{"local"}}}

	client, err := ApplyVaultSecrets(cfg, newTestLogger())
	assert.NoError(t, err)
	assert.Nil(t, client)
	assert.Equal(t, []string{"local"}, cfg.Server.APIKeys)
}

func TestApplyVaultSecretsLoadsAPIKeys(t *testing.T) {
	fv := newFakeVault(t, "alpha, beta", 2)
	cfg := &Config{
		Server: ServerConfig{APIKeys: []string{"from-config"}},
		Vault:  fv.config(),
	}

	client, err := ApplyVaultSecrets(cfg, newTestLogger())
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)

	secret, err := client.GetSecretV2(apiKeysPath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), secret.Version)
}

func TestApplyVaultSecretsKeepsKeysWhenSecretIsEmpty(t *testing.T) {
	fv := newFakeVault(t, "", 1)
	cfg := &Config{
		Server: ServerConfig{APIKeys: []string{"from-config"}},
		Vault:  fv.config(),
	}

	_, err := ApplyVaultSecrets(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"from-config"}, cfg.Server.APIKeys)
}

func TestGetSecretV2MissingSecret(t *testing.T) {
	fv := newFakeVault(t, "a", 1)
	client, err := NewVaultClient(fv.config(), nil)
	require.NoError(t, err)

	_, err = client.GetSecretV2("secret/data/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errSecretNotFound)
	assert.True(t, client.breaker == nil || client.breaker.IsHealthy())
}

func TestVaultCircuitBreakerOpens(t *testing.T) {
	fv := newFakeVault(t, "a", 1)
	fv.status.Store(http.StatusInternalServerError)

	cfg := fv.config()
	cfg.CircuitBreaker = CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
	client, err := NewVaultClient(cfg, newTestLogger())
	require.NoError(t, err)

	for i := range 2 {
		_, err := client.GetSecretV2(apiKeysPath)
		require.Error(t, err, fmt.Sprintf("call %d", i))
	}
	assert.Equal(t, int32(2), fv.hits.Load())
	assert.False(t, client.breaker.IsHealthy())

	_, err = client.GetSecretV2(apiKeysPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Equal(t, int32(2), fv.hits.Load(), "open breaker must not reach Vault")

	stats := client.BreakerStats()
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, "open", stats["state"])
}

func TestNewVaultClientUnreachable(t *testing.T) {
	t.Setenv("VAULT_MAX_RETRIES", "0")
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewVaultClient(VaultConfig{Enabled: true, Address: addr, Token: "t"}, nil)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrorTypeNetwork, appErr.Type)
}

func TestNilVaultClient(t *testing.T) {
	var client *VaultClient
	_, err := client.GetSecretV2("any")
	assert.Error(t, err)
	assert.Equal(t, map[string]any{"enabled": false}, client.BreakerStats())
}
