// Package identity implements the user half of the credential service:
// the principal record, its persistence boundary, and the error taxonomy
// the HTTP layer maps to status codes.
//
// This package is intentionally dependency-light and security-first.
package identity
