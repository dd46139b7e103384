// Package output renders normalized responses for humans and machines.
//
// Supported output formats:
//   - Console: colored terminal output in status, headers, body order
//   - JSON: indented JSON with the same key order
package output
