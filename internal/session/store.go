// Package session binds browser sessions to logged-in user IDs.
//
// Three backends implement Store: MemoryStore keeps sessions in process,
// RedisStore keeps them in Redis with a TTL, and CookieStore keeps nothing
// server-side and signs the user ID into the cookie value itself.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNoSession is returned by Lookup for unknown, expired or tampered tokens.
var ErrNoSession = errors.New("no session")

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

// Store creates, resolves and destroys session tokens.
type Store interface {
	// Create starts a session for userID and returns the token to place in
	// the session cookie.
	Create(ctx context.Context, userID int64) (string, error)
	// Lookup resolves a token to its user ID, or returns ErrNoSession.
	Lookup(ctx context.Context, token string) (int64, error)
	// Destroy ends the session. Destroying an unknown token is not an error.
	Destroy(ctx context.Context, token string) error
}
