// Package session holds the admin authentication primitives: a
// server-side session store and a pluggable credential verifier.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned for unknown or expired session ids.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidCredentials is returned by a Verifier on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session is an authenticated admin session.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists sessions.  Get must return ErrNotFound once a session has
// expired or been deleted.
type Store interface {
	Create(ctx context.Context, username string, ttl time.Duration) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// Verifier checks admin credentials.  Implementations return
// ErrInvalidCredentials for a wrong username or password.
type Verifier interface {
	Verify(ctx context.Context, username, password string) error
}
