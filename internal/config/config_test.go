package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/asclepius/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("ASCLEPIUS_ENV", "local")
	t.Setenv("ASCLEPIUS_MODE", "chat")
	t.Setenv("ASCLEPIUS_HEALTH_PORT", "9090")
	t.Setenv("GOOGLE_MAPS_API_KEY", "testMapsKey")
	t.Setenv("GOOGLE_API_KEY", "testGeminiKey")
	t.Setenv("ASCLEPIUS_MAX_STEPS", "3")
	t.Setenv("ASCLEPIUS_AGENT_TIMEOUT", "15s")
	t.Setenv("ASCLEPIUS_STATE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "chat", cfg.Mode)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "testMapsKey", cfg.Maps.APIKey)
	assert.Equal(t, "testGeminiKey", cfg.Agent.APIKey)
	assert.Equal(t, 3, cfg.Agent.MaxSteps)
	assert.Equal(t, 15*time.Second, cfg.Agent.Timeout)
	assert.Equal(t, "postgres", cfg.State.Backend)
	assert.Equal(t, "testHost", cfg.State.Database.Host)
	assert.Equal(t, "12345", cfg.State.Database.Port)
	assert.Equal(t, "admin", cfg.State.Database.User)
	assert.Equal(t, "adminpass", cfg.State.Database.Password)
	assert.Equal(t, "testName", cfg.State.Database.Name)
}

func Test_MustLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ASCLEPIUS_ENV", "ASCLEPIUS_MODE", "ASCLEPIUS_HEALTH_PORT", "ASCLEPIUS_MODEL",
		"ASCLEPIUS_MAX_STEPS", "ASCLEPIUS_AGENT_TIMEOUT", "ASCLEPIUS_STATE_BACKEND",
		"DB_PORT", "REDIS_URL", "ASCLEPIUS_REDIS_PREFIX", "ASCLEPIUS_CONFIG_FILE", "ASCLEPIUS_ENV_FILE",
	} {
		unsetEnv(t, key)
	}

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "mcp", cfg.Mode)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.Agent.Model)
	assert.Equal(t, 5, cfg.Agent.MaxSteps)
	assert.Equal(t, time.Minute, cfg.Agent.Timeout)
	assert.Equal(t, "memory", cfg.State.Backend)
	assert.Equal(t, "5432", cfg.State.Database.Port)
	assert.Equal(t, "redis://localhost:6379/0", cfg.State.RedisURL)
	assert.Equal(t, "asclepius", cfg.State.RedisPrefix)
}

func Test_MustLoadFromEnvFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "test.env")
	filet.File(t, path, "GOOGLE_MAPS_API_KEY=fromDotEnv\nASCLEPIUS_MODEL=gemini-2.5-pro\n")

	unsetEnv(t, "GOOGLE_MAPS_API_KEY")
	unsetEnv(t, "ASCLEPIUS_MODEL")
	unsetEnv(t, "ASCLEPIUS_CONFIG_FILE")
	t.Setenv("ASCLEPIUS_ENV_FILE", path)

	cfg := config.MustLoad()

	assert.Equal(t, "fromDotEnv", cfg.Maps.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Agent.Model)
}

func Test_MustLoadFromConfigFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "asclepius.yaml")
	filet.File(t, path, "ASCLEPIUS_MODE: chat\nASCLEPIUS_MAX_STEPS: \"7\"\n")

	unsetEnv(t, "ASCLEPIUS_MODE")
	unsetEnv(t, "ASCLEPIUS_ENV_FILE")
	t.Setenv("ASCLEPIUS_MAX_STEPS", "2") // the environment wins over the file
	t.Setenv("ASCLEPIUS_CONFIG_FILE", path)

	cfg := config.MustLoad()

	assert.Equal(t, "chat", cfg.Mode)
	assert.Equal(t, 2, cfg.Agent.MaxSteps)
}

func TestMustLoad_ConfigFileError(t *testing.T) {
	t.Setenv("ASCLEPIUS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	assert.PanicsWithValue(t, "failed to read configuration file", func() {
		config.MustLoad()
	})
}

func TestMustLoad_PortError(t *testing.T) {
	unsetEnv(t, "ASCLEPIUS_CONFIG_FILE")
	t.Setenv("ASCLEPIUS_HEALTH_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for monitoring server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_MaxStepsError(t *testing.T) {
	unsetEnv(t, "ASCLEPIUS_CONFIG_FILE")
	t.Setenv("ASCLEPIUS_MAX_STEPS", "error_value")

	assert.PanicsWithValue(t, "failed to parse max steps from configuration, must be an integer types", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimeoutError(t *testing.T) {
	unsetEnv(t, "ASCLEPIUS_CONFIG_FILE")
	t.Setenv("ASCLEPIUS_AGENT_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse agent timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_ValidationError(t *testing.T) {
	unsetEnv(t, "ASCLEPIUS_CONFIG_FILE")

	cases := map[string]string{
		"ASCLEPIUS_MODE":          "grpc",
		"ASCLEPIUS_STATE_BACKEND": "sqlite",
		"ASCLEPIUS_HEALTH_PORT":   "70000",
		"ASCLEPIUS_MAX_STEPS":     "0",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			assert.Panics(t, func() {
				config.MustLoad()
			})
		})
	}
}
