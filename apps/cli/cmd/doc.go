// Package cmd implements the stacke2e CLI commands using Cobra.
//
// Available commands:
//   - env check: Verify the variables an end-to-end run requires
//   - fetch: Perform one request and print the normalized response
//   - version: Show stacke2e version information
package cmd
