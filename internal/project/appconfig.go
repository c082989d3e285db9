package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CreaseStack/internal/logging"
	"github.com/piwi3910/CreaseStack/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.creasestack/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".creasestack")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields missing from the file keep their default values, and values the
// fold pipeline cannot use are reset by sanitizeConfig.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	sanitizeConfig(&config)
	return config, nil
}

// sanitizeConfig canonicalises the log level and replaces non-positive
// tolerances and paper size with the defaults.
func sanitizeConfig(c *model.AppConfig) {
	defaults := model.DefaultAppConfig()
	c.LogLevel = strings.ToLower(logging.ParseLevel(c.LogLevel).String())
	if c.DefaultPointEps <= 0 {
		c.DefaultPointEps = defaults.DefaultPointEps
	}
	if c.DefaultAngleEps <= 0 {
		c.DefaultAngleEps = defaults.DefaultAngleEps
	}
	if c.DefaultPaperSize <= 0 {
		c.DefaultPaperSize = defaults.DefaultPaperSize
	}
	if c.RecentProjects == nil {
		c.RecentProjects = []string{}
	}
}
