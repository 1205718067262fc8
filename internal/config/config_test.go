package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
session_key: "`+testSessionKey+`"
admin_email: "  Admin@Example.COM "
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Listen)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, 604800, cfg.SessionMaxAge)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, "./data/lesezeit.db", cfg.Database.Path)
	assert.Equal(t, "./data/uploads", cfg.Uploads.Dir)
	assert.Equal(t, int64(10<<20), cfg.Uploads.MaxSize)
	assert.Equal(t, 10*time.Second, cfg.GetShutdownTimeout())
	assert.False(t, cfg.Avatars.Enabled)
	assert.Equal(t, "identicon", cfg.Avatars.DefaultImage)
	assert.Equal(t, 64, cfg.Avatars.Size)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
session_key: "`+testSessionKey+`"
admin_email: "admin@example.com"
`)
	t.Setenv("LESEZEIT_LISTEN", "127.0.0.1:9999")
	t.Setenv("LESEZEIT_UPLOADS_MAX_SIZE", "2048")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Listen)
	assert.Equal(t, int64(2048), cfg.Uploads.MaxSize)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing session key",
			content: `admin_email: "admin@example.com"`,
			wantErr: "session key is required",
		},
		{
			name: "short session key",
			content: `
session_key: "short"
admin_email: "admin@example.com"`,
			wantErr: "at least 32 characters",
		},
		{
			name:    "missing admin email",
			content: `session_key: "` + testSessionKey + `"`,
			wantErr: "admin email is required",
		},
		{
			name: "invalid admin email",
			content: `
session_key: "` + testSessionKey + `"
admin_email: "nobody"`,
			wantErr: "not a valid email address",
		},
		{
			name: "bcrypt cost out of range",
			content: `
session_key: "` + testSessionKey + `"
admin_email: "admin@example.com"
bcrypt_cost: 99`,
			wantErr: "bcrypt cost",
		},
		{
			name: "negative upload size",
			content: `
session_key: "` + testSessionKey + `"
admin_email: "admin@example.com"
uploads:
  max_size: -1`,
			wantErr: "uploads max size",
		},
		{
			name: "unknown avatar rating",
			content: `
session_key: "` + testSessionKey + `"
admin_email: "admin@example.com"
avatars:
  enabled: true
  rating: nsfw`,
			wantErr: "avatars rating",
		},
		{
			name: "avatar size out of range",
			content: `
session_key: "` + testSessionKey + `"
admin_email: "admin@example.com"
avatars:
  enabled: true
  size: 4096`,
			wantErr: "avatars size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsAdminEmail(t *testing.T) {
	cfg := &Config{AdminEmail: "admin@example.com"}

	assert.True(t, cfg.IsAdminEmail("admin@example.com"))
	assert.True(t, cfg.IsAdminEmail(" ADMIN@example.com "))
	assert.False(t, cfg.IsAdminEmail("someone@example.com"))
	assert.False(t, (*Config)(nil).IsAdminEmail("admin@example.com"))
}
