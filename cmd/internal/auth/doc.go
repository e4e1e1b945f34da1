// Package auth is the credential service core: signup, login, refresh
// rotation, and logout, composed from the identity store, the session store,
// and the JWT codec.
package auth
