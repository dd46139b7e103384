// Package config holds the resolved configuration for an end-to-end run.
//
// It provides functionality for:
//   - Loading the dashboard and backend endpoints plus internal project credentials
//   - Resolving them once per process
//   - Loading optional HTTP client settings from stacke2e.yaml
package config
