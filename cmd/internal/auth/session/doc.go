// Package session persists refresh-token sessions and implements the
// compare-and-swap rotation that makes token refresh single-use.
package session
