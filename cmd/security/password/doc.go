// Package password wraps bcrypt hashing for user credentials.
//
// bcrypt is treated as a black-box one-way hash with a per-password salt.
// The package also exposes a dummy hash so login paths can keep a uniform
// latency profile when the looked-up account does not exist.
package password
