package config

import (
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/abdul-hamid-achik/stacke2e/packages/core/env"
)

// Environment variables every run requires.
const (
	EnvDashboardBaseURL         = "STACK_DASHBOARD_BASE_URL"
	EnvBackendBaseURL           = "STACK_BACKEND_BASE_URL"
	EnvInternalProjectID        = "STACK_INTERNAL_PROJECT_ID"
	EnvInternalProjectClientKey = "STACK_INTERNAL_PROJECT_CLIENT_KEY"
)

// RequiredVariables lists the required variables in load order.
var RequiredVariables = []string{
	EnvDashboardBaseURL,
	EnvBackendBaseURL,
	EnvInternalProjectID,
	EnvInternalProjectClientKey,
}

// Config is the configuration shared by every test in a run.
// It is built once and passed by pointer; nothing mutates it afterwards.
type Config struct {
	DashboardBaseURL         string
	BackendBaseURL           string
	InternalProjectID        string
	InternalProjectClientKey string
}

// Load resolves each required variable through lookup. The first missing
// variable stops loading and is returned as an *env.ConfigurationError.
func Load(lookup env.LookupFunc) (*Config, error) {
	values := make([]string, len(RequiredVariables))
	for i, name := range RequiredVariables {
		v, err := env.RequireFrom(lookup, name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Config{
		DashboardBaseURL:         values[0],
		BackendBaseURL:           values[1],
		InternalProjectID:        values[2],
		InternalProjectClientKey: values[3],
	}, nil
}

// FromEnv loads the configuration from the process environment.
func FromEnv() (*Config, error) {
	return Load(os.LookupEnv)
}

var (
	currentOnce sync.Once
	current     *Config
	currentErr  error
)

// Current returns the process-wide configuration, reading the environment on
// the first call only. Later calls return the same value or the same error.
func Current() (*Config, error) {
	currentOnce.Do(func() {
		current, currentErr = FromEnv()
	})
	return current, currentErr
}

// MustCurrent is like Current but panics when the configuration is incomplete.
func MustCurrent() *Config {
	cfg, err := Current()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks that both base URLs are absolute http(s) URLs.
func (c *Config) Validate() error {
	for _, kv := range c.Values()[:2] {
		name, raw := kv[0], kv[1]
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid URL: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s: unsupported URL scheme: %q", name, u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("%s: URL must have a host", name)
		}
	}
	return nil
}

// Values returns the configuration as name/value pairs in RequiredVariables order.
func (c *Config) Values() [][2]string {
	return [][2]string{
		{EnvDashboardBaseURL, c.DashboardBaseURL},
		{EnvBackendBaseURL, c.BackendBaseURL},
		{EnvInternalProjectID, c.InternalProjectID},
		{EnvInternalProjectClientKey, c.InternalProjectClientKey},
	}
}
