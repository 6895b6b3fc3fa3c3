package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg := config.Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.GeminiAPIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := config.Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, "legacy-key", cfg.GeminiAPIKey, "API_KEY is the fallback credential")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadDotEnv_DoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SCHEMEXPERT_TEST_A=from-file\nSCHEMEXPERT_TEST_B=from-file\n"), 0o600))

	t.Setenv("SCHEMEXPERT_TEST_A", "from-env")
	os.Unsetenv("SCHEMEXPERT_TEST_B")
	t.Cleanup(func() { os.Unsetenv("SCHEMEXPERT_TEST_B") })

	require.NoError(t, config.LoadDotEnv(path))

	assert.Equal(t, "from-env", os.Getenv("SCHEMEXPERT_TEST_A"))
	assert.Equal(t, "from-file", os.Getenv("SCHEMEXPERT_TEST_B"))
}
