package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/ledger"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/vision"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix of the environment overrides.
const EnvPrefix = "FITTRACK"

// Config holds all application configuration
type Config struct {
	Server struct {
		Port           string   `json:"port"`
		StaticDir      string   `json:"static_dir"`
		Debug          bool     `json:"debug"`
		AllowedOrigins []string `json:"allowed_origins"`
	} `json:"server"`

	Backend struct {
		BaseURL        string `json:"base_url"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"backend"`

	Store struct {
		Path string `json:"path"`
	} `json:"store"`

	Vision vision.Config `json:"vision"`

	Log struct {
		Level  string `json:"level"`
		Pretty bool   `json:"pretty"`
	} `json:"log"`

	Goals models.Goals `json:"goals"`

	Water struct {
		GoalML  int `json:"goal_ml"`
		StartML int `json:"start_ml"`
	} `json:"water"`
}

// overrides are read from FITTRACK_* variables and win over the file.
type overrides struct {
	BackendURL string `split_words:"true"`
	Port       string
	StorePath  string `split_words:"true"`
	LogLevel   string `split_words:"true"`
	Vision     string
}

// LoadConfig loads configuration from a JSON file, then applies .env and
// environment overrides. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	config.applyDefaults()
	if config.Water.StartML < 0 || config.Water.StartML > config.Water.GoalML {
		return nil, errors.Errorf("water start_ml %d must be within [0, %d]", config.Water.StartML, config.Water.GoalML)
	}
	return &config, nil
}

func (c *Config) applyEnv() error {
	var env overrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return errors.Wrap(err, "failed to read environment")
	}
	if env.BackendURL != "" {
		c.Backend.BaseURL = env.BackendURL
	}
	if env.Port != "" {
		c.Server.Port = env.Port
	}
	if env.StorePath != "" {
		c.Store.Path = env.StorePath
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.Vision != "" {
		c.Vision.Type = env.Vision
	}
	return nil
}

// Handle missing values
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./static"
	}
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = api.DefaultBaseURL
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = int(api.DefaultTimeout / time.Second)
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultStorePath()
	}
	if c.Vision.Type == "" {
		c.Vision.Type = vision.TypeNone
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !c.Goals.Valid() {
		c.Goals = models.DefaultGoals
	}
	if c.Water.GoalML <= 0 {
		c.Water.GoalML = ledger.DefaultWaterGoalML
	}
}

// Timeout returns the backend request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fittrack", "fittrack.db")
	}
	return "fittrack.db"
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("FITTRACK_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}
