// Package token mints and verifies the service's HS256 JWTs. Access and
// refresh tokens are separate families with independent signing keys and
// lifetimes; the codec reports four distinct verification failures so the
// service can log precisely while the API answers uniformly.
package token
