package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	opts, err := Load([]string{"-c", ""}, envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", opts.Port)
	assert.Equal(t, SessionMemory, opts.SessionBackend)
	assert.Equal(t, 24*time.Hour, opts.SessionTTL.Duration)
	assert.Equal(t, DevSecretKey, opts.SecretKey)
	assert.True(t, opts.UsesDevSecret())
	assert.False(t, opts.TLSEnabled())
	assert.False(t, opts.SecureCookies)
	assert.Equal(t, []string{"http://localhost:8080", "http://127.0.0.1:8080"}, opts.AllowedOrigins)
}

func TestLoad_OriginsFollowAddressAndTLS(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		env         map[string]string
		wantOrigins []string
		wantSecure  bool
	}{
		{
			name:        "custom port",
			env:         map[string]string{"SERVER_ADDRESS": ":9090"},
			wantOrigins: []string{"http://localhost:9090", "http://127.0.0.1:9090"},
		},
		{
			name:        "named host",
			args:        []string{"-a", "tweets.example:80"},
			wantOrigins: []string{"http://tweets.example:80"},
		},
		{
			name:        "tls switches scheme and secures cookies",
			env:         map[string]string{"SERVER_ADDRESS": "0.0.0.0:8443", "TLS_CERT": "c.pem", "TLS_KEY": "k.pem"},
			wantOrigins: []string{"https://localhost:8443", "https://127.0.0.1:8443"},
			wantSecure:  true,
		},
		{
			name:        "ipv6 wildcard",
			args:        []string{"-a", "[::]:8080"},
			wantOrigins: []string{"http://localhost:8080", "http://127.0.0.1:8080"},
		},
		{
			name:        "explicit flag wins",
			args:        []string{"-a", ":9090", "-o", "https://x.example,https://y.example"},
			wantOrigins: []string{"https://x.example", "https://y.example"},
		},
		{
			name:        "env overrides flag",
			args:        []string{"-o", "https://x.example"},
			env:         map[string]string{"ALLOWED_ORIGINS": "https://z.example"},
			wantOrigins: []string{"https://z.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Load(append([]string{"-c", ""}, tt.args...), envMap(tt.env))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrigins, opts.AllowedOrigins)
			assert.Equal(t, tt.wantSecure, opts.SecureCookies)
		})
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"address": "file:1",
		"database_dsn": "file-dsn",
		"session_backend": "redis",
		"session_ttl": "30m",
		"bcrypt_cost": 10,
		"allowed_origins": ["https://file.example"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	t.Run("file only", func(t *testing.T) {
		opts, err := Load([]string{"-c", path}, envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, "file:1", opts.Port)
		assert.Equal(t, "file-dsn", opts.DatabaseDSN)
		assert.Equal(t, SessionRedis, opts.SessionBackend)
		assert.Equal(t, 30*time.Minute, opts.SessionTTL.Duration)
		assert.Equal(t, 10, opts.BcryptCost)
		assert.Equal(t, []string{"https://file.example"}, opts.AllowedOrigins)
	})

	t.Run("flags override file", func(t *testing.T) {
		opts, err := Load([]string{"-c", path, "-a", "flag:2", "-s", "cookie"}, envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, "flag:2", opts.Port)
		assert.Equal(t, SessionCookie, opts.SessionBackend)
		assert.Equal(t, "file-dsn", opts.DatabaseDSN)
	})

	t.Run("env overrides flags", func(t *testing.T) {
		opts, err := Load([]string{"-c", path, "-a", "flag:2"}, envMap(map[string]string{
			"SERVER_ADDRESS":  "env:3",
			"SECRET_KEY":      "s3cret",
			"ALLOWED_ORIGINS": "https://a.example, https://b.example,",
			"SESSION_TTL":     "2h",
			"BCRYPT_COST":     "11",
			"SECURE_COOKIES":  "true",
		}))
		require.NoError(t, err)
		assert.Equal(t, "env:3", opts.Port)
		assert.Equal(t, "s3cret", opts.SecretKey)
		assert.False(t, opts.UsesDevSecret())
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, opts.AllowedOrigins)
		assert.Equal(t, 2*time.Hour, opts.SessionTTL.Duration)
		assert.Equal(t, 11, opts.BcryptCost)
		assert.True(t, opts.SecureCookies)
	})

	t.Run("CONFIG env selects file", func(t *testing.T) {
		opts, err := Load(nil, envMap(map[string]string{"CONFIG": path}))
		require.NoError(t, err)
		assert.Equal(t, "file:1", opts.Port)
	})
}

func TestLoad_Errors(t *testing.T) {
	badJSON := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{not json"), 0o600))

	cases := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"unknown flag", []string{"-c", "", "-zzz"}, nil},
		{"bad json", []string{"-c", badJSON}, nil},
		{"unknown backend", []string{"-c", "", "-s", "etcd"}, nil},
		{"bad ttl", []string{"-c", ""}, map[string]string{"SESSION_TTL": "forever"}},
		{"negative ttl", []string{"-c", ""}, map[string]string{"SESSION_TTL": "-1h"}},
		{"bad cost", []string{"-c", ""}, map[string]string{"BCRYPT_COST": "high"}},
		{"half tls", []string{"-c", ""}, map[string]string{"TLS_CERT": "cert.pem"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.args, envMap(tc.env))
			assert.Error(t, err)
		})
	}
}
