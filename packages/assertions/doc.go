// Package assertions checks normalized responses in end-to-end tests.
//
// Supported checks:
//   - Status codes (Status, Success)
//   - Body kind (IsJSON, IsText)
//   - JSON Schema validation of JSON bodies (Schema, SchemaFile)
//
// Every check returns an error describing the mismatch and embedding the
// rendered response, so a failed test shows status, headers and body.
package assertions
