package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/config"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, api.DefaultBaseURL, cfg.Backend.BaseURL)
	assert.Equal(t, models.DefaultGoals, cfg.Goals)
	assert.Equal(t, 2500, cfg.Water.GoalML)
	assert.Equal(t, api.DefaultTimeout, cfg.Timeout())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	// Given a config file and environment overrides
	path := writeFile(t, `{
		"server": {"port": "9000", "static_dir": "web"},
		"backend": {"base_url": "http://file:5000/api", "timeout_seconds": 3},
		"goals": {"calories": 1800, "protein": 120, "carbs": 200, "fat": 60},
		"water": {"goal_ml": 3000, "start_ml": 500}
	}`)
	t.Setenv("FITTRACK_BACKEND_URL", "http://env:5000/api")
	t.Setenv("FITTRACK_LOG_LEVEL", "debug")

	// When the config is loaded
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	// Then the environment wins and file values survive elsewhere
	assert.Equal(t, "http://env:5000/api", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "web", cfg.Server.StaticDir)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, 1800.0, cfg.Goals.Calories)
	assert.Equal(t, 3000, cfg.Water.GoalML)
	assert.Equal(t, 500, cfg.Water.StartML)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := config.LoadConfig(writeFile(t, `{"server": `))
	assert.Error(t, err, "malformed JSON")

	_, err = config.LoadConfig(writeFile(t, `{"water": {"goal_ml": 1000, "start_ml": 1500}}`))
	assert.Error(t, err, "start above goal")
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("FITTRACK_CONFIG", "/etc/fittrack.json")
	assert.Equal(t, "/etc/fittrack.json", config.GetConfigPath())
}
