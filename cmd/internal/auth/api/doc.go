// Package api exposes the credential service over HTTP: the /api/auth
// routes, the bearer-token middleware, and the Prometheus counters for
// credential operations.
package api
