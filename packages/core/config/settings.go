package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings tunes the HTTP client used by tests and the CLI.
type Settings struct {
	Timeout     int               `yaml:"timeout,omitempty"` // milliseconds, 0 leaves the transport default
	ValidateSSL *bool             `yaml:"validateSSL,omitempty"`
	Proxy       string            `yaml:"proxy,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"` // Default headers for all requests
	NoColor     *bool             `yaml:"noColor,omitempty"`
}

// SettingsFilenames contains the possible settings file names
var SettingsFilenames = []string{
	"stacke2e.yaml",
	"stacke2e.yml",
	".stacke2e.yaml",
	".stacke2e.yml",
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (s *Settings) GetValidateSSL() bool {
	return getBool(s.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (s *Settings) GetNoColor() bool {
	return getBool(s.NoColor, false)
}

// FindSettingsFile searches dir and its parents for a settings file.
func FindSettingsFile(dir string) string {
	for {
		for _, name := range SettingsFilenames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// LoadSettings reads a YAML settings file on top of the defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	if settings.Timeout < 0 {
		return nil, fmt.Errorf("parsing settings %s: timeout must not be negative", path)
	}
	return settings, nil
}

// Merge merges other into s, with other taking precedence
func (s *Settings) Merge(other *Settings) *Settings {
	if other == nil {
		return s
	}

	result := *s
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(s.Headers)+len(other.Headers))
		for k, v := range s.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	return &result
}
