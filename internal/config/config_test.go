package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 8080
  mode: debug
  allow_origins: ["http://localhost:3000"]
database:
  url: postgres://u:p@localhost/db
jwt:
  secret: from-file
  access_ttl: 5m
redis:
  addr: localhost:6379
pdf:
  font_path: ""
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	// defaults fill what neither source set
	assert.Equal(t, 720*time.Hour, cfg.JWT.RefreshTTL)
	assert.Equal(t, "taskhub", cfg.JWT.Issuer)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Email.Enabled())
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.Database.DSN)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowOrigins)
}

func TestLoad_BrokenYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"DATABASE_URL", "JWT_SECRET", "access_ttl", "server.mode", "server.port"} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}

	cfg = Config{
		Server:   ServerConfig{Port: 5000, Mode: "release"},
		Database: DatabaseConfig{DSN: "postgres://x"},
		JWT:      JWTConfig{Secret: "s", AccessTTL: time.Minute},
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PDFFontPath(t *testing.T) {
	font := filepath.Join(t.TempDir(), "DejaVuSans.ttf")
	require.NoError(t, os.WriteFile(font, []byte("ttf"), 0o600))
	t.Setenv("PDF_FONT_PATH", font)

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, font, cfg.PDF.FontPath)

	t.Setenv("PDF_FONT_PATH", filepath.Join(t.TempDir(), "missing.ttf"))
	_, err = Load(writeConfig(t, sampleYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf.font_path")
}
