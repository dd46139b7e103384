// Package http performs HTTP requests for end-to-end tests and normalizes
// the responses into a printable NiceResponse.
//
// It wraps the standard library's http package with:
//   - Content-type driven body decoding (JSON, text, raw bytes)
//   - An immutable response value with a fixed presentation order
//   - Base URL resolution, default headers and per-request IDs
//   - Typed transport and decode errors that preserve the original message
package http
