package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TASKBUDDY_AUTH_URL", "TASKBUDDY_GOALS_URL", "TASKBUDDY_NOTIFICATIONS_URL",
		"TASKBUDDY_PROFILE_URL", "TASKBUDDY_LOG_LEVEL", "TASKBUDDY_TIMEOUT", "TASKBUDDY_TELEGRAM_BOT",
		"TASKBUDDY_THEME", "TASKBUDDY_ACCENT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "http://localhost:8080/goals", cfg.Endpoints.Goals)
	assert.Equal(t, "TaskBody_bot", cfg.TelegramBot)
	assert.Equal(t, DefaultSettings(), cfg.Settings)
	assert.Equal(t, filepath.Join(dir, FileName), cfg.Path)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `log_level: DEBUG
timeout: 3s
endpoints:
  auth: https://example.test/auth
  goals: https://example.test/goals
  notifications: https://example.test/notifications
  profile: https://example.test/profile
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "https://example.test/auth", cfg.APIEndpoints().Auth)

	t.Setenv("TASKBUDDY_GOALS_URL", "https://override.test/goals")
	cfg, err = Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "https://override.test/goals", cfg.Endpoints.Goals)
	assert.Equal(t, "https://example.test/profile", cfg.Endpoints.Profile)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoints: [unclosed"), 0644))

	_, err := Load(dir, path)
	assert.Error(t, err)
}

func TestTelegramLink(t *testing.T) {
	cfg := Config{TelegramBot: "TaskBody_bot"}
	assert.Equal(t, "https://t.me/TaskBody_bot?start=12", cfg.TelegramLink(12))
}

func TestYAMLOmitsDataDir(t *testing.T) {
	cfg := Config{LogLevel: "INFO", Timeout: 5 * time.Second, DataDir: "/secret"}
	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: INFO")
	assert.Contains(t, out, "timeout: 5s")
	assert.NotContains(t, out, "/secret")
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("warn", &buf)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestOpenLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	f, err := OpenLogFile(dir)
	require.NoError(t, err)
	defer f.Close()
	_, err = os.Stat(filepath.Join(dir, LogFileName))
	assert.NoError(t, err)
}

func TestLoadKeepsExplicitFalseSettings(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `settings:
  notifications: false
  accent: green
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.False(t, cfg.Settings.Notifications)
	assert.Equal(t, "green", cfg.Settings.Accent)
	// absent keys keep their default
	assert.True(t, cfg.Settings.TelegramNotifications)
	assert.Equal(t, "1hour", cfg.Settings.ReminderLead)

	t.Setenv("TASKBUDDY_THEME", "light")
	cfg, err = Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.Settings.Theme)
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "fresh")

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	cfg.Settings.EmailNotifications = true
	cfg.Settings.TelegramNotifications = false
	cfg.Settings.TelegramUsername = "@buddy"
	cfg.Settings.ReminderLead = "1day"
	require.NoError(t, cfg.Save())

	again, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.Settings, again.Settings)
	assert.Equal(t, cfg.Endpoints, again.Endpoints)
}

func TestSaveWithoutPath(t *testing.T) {
	assert.EqualError(t, Config{}.Save(), "saving config: no path")
}
