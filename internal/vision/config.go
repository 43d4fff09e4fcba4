package vision

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Config selects and configures the analyzer.
type Config struct {
	Type       string       `json:"type"` // "none", "google" or "canned"
	ConfigPath string       `json:"config_path,omitempty"`
	Google     GoogleConfig `json:"google"`
}

// BaseConfig provides common configuration functionality
type BaseConfig struct {
	ConfigPath string `json:"-"`
}

// LoadConfig loads configuration from a file, falling back to environment variables
func (c *BaseConfig) LoadConfig(log zerolog.Logger, configPath string, envPrefix string, config interface{}) error {
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", configPath, err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
		log.Debug().Str("path", configPath).Msg("loaded analyzer configuration")
		return nil
	}

	defaultPath := filepath.Join("config", fmt.Sprintf("%s.json", envPrefix))
	if data, err := os.ReadFile(defaultPath); err == nil {
		if err := json.Unmarshal(data, config); err == nil {
			log.Debug().Str("path", defaultPath).Msg("loaded analyzer configuration")
			return nil
		}
	}

	log.Debug().Str("analyzer", envPrefix).Msg("using environment variables for analyzer configuration")
	return nil
}
