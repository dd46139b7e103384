// Package env reads required configuration from the process environment.
//
// It provides functionality for:
//   - Resolving required variables, failing fast when one is unset or empty
//   - Injecting a lookup function so callers can supply their own environment
//   - Loading .env files to seed the environment before a test run
package env
