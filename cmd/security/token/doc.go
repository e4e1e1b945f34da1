// Package token provides the digest primitives used to key refresh-token
// session rows. Plain refresh tokens never reach the database; stores look
// rows up by the 64-char hex digest produced here.
package token
