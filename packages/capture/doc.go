// Package capture extracts values from normalized responses so tests can
// reuse them in later requests.
//
// It supports capturing values from:
//   - Response body (gjson paths, e.g. "body.user.id")
//   - Response headers ("header:Location")
//   - Response status code ("status")
package capture
