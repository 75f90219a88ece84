package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestResolveEnv(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	assert.Equal(t, EnvProduction, ResolveEnv(""))
	assert.Equal(t, EnvDevelopment, ResolveEnv("development"))
	assert.Equal(t, EnvDevelopment, ResolveEnv(" Development "))
	assert.Equal(t, EnvProduction, ResolveEnv("staging"))

	t.Setenv("ENVIRONMENT", "development")
	assert.Equal(t, EnvDevelopment, ResolveEnv(""))
	assert.Equal(t, EnvProduction, ResolveEnv("production"))
}

func TestFileNames(t *testing.T) {
	y, e := FileNames(EnvDevelopment)
	assert.Equal(t, "config.development.yaml", y)
	assert.Equal(t, ".env.development", e)

	y, e = FileNames(EnvProduction)
	assert.Equal(t, "config.yaml", y)
	assert.Equal(t, ".env", e)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	cfg, err := Load(t.TempDir(), EnvProduction)
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, time.Hour, cfg.Database.MaxLife)
	assert.Equal(t, 72*time.Hour, cfg.Security.JWTTTLH)
	assert.Equal(t, "llama3-8b-8192", cfg.AI.Model)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 720*time.Hour, cfg.Audit.Retention)
	assert.Equal(t, time.Hour, cfg.Audit.PruneInterval)
}

func TestLoad_SelectsFileByEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server:\n  port: 9001\n")
	writeFile(t, dir, "config.development.yaml", "server:\n  port: 9002\n  debug: true\n")

	prod, err := Load(dir, EnvProduction)
	require.NoError(t, err)
	assert.Equal(t, 9001, prod.Server.Port)

	dev, err := Load(dir, EnvDevelopment)
	require.NoError(t, err)
	assert.Equal(t, 9002, dev.Server.Port)
	assert.True(t, dev.Server.Debug)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "security:\n  jwt_secret: from-yaml\ndatabase:\n  mode: mysql\n")
	t.Setenv("SECURITY_JWT_SECRET", "from-env")

	cfg, err := Load(dir, EnvProduction)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Security.JWTSecret)
	assert.Equal(t, "mysql", cfg.Database.Mode)
}

func TestLoad_GroqKeyFallback(t *testing.T) {
	t.Setenv("AI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk_test")

	cfg, err := Load(t.TempDir(), EnvProduction)
	require.NoError(t, err)
	assert.Equal(t, "gsk_test", cfg.AI.APIKey)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server: [unclosed\n")

	_, err := Load(dir, EnvProduction)
	assert.Error(t, err)
}
