package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoAdminPassword means neither a password hash nor a plain password was
// configured for the admin account.
var ErrNoAdminPassword = errors.New("admin password not configured")

// AdminPasswordHash returns the bcrypt hash the admin logs in against.  A
// configured hash wins and must parse as bcrypt; otherwise plain is hashed
// with cost, falling back to the default cost when cost is out of range.
func AdminPasswordHash(hash, plain string, cost int) (string, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return "", fmt.Errorf("admin password hash: %w", err)
		}
		return hash, nil
	}
	if plain == "" {
		return "", ErrNoAdminPassword
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// StaticVerifier checks a single admin account configured at startup.  The
// username is compared in constant time and the password against a bcrypt
// hash, so the plain password never needs to stay in memory.
type StaticVerifier struct {
	username     string
	passwordHash []byte
}

func NewStaticVerifier(username, passwordHash string) *StaticVerifier {
	return &StaticVerifier{username: username, passwordHash: []byte(passwordHash)}
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	// bcrypt runs even for a wrong username to keep timing uniform.
	passOK := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}
