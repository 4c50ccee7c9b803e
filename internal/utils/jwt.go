package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"
    "time" // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned for tokens that fail signature, algorithm or
// expiry checks.
var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims is the payload of the admin session cookie.  SessionID
// points at the server-side session record; the cookie alone is never
// sufficient to authenticate.
type SessionClaims struct {
    SessionID string `json:"sid"`
    jwt.RegisteredClaims
}

// NewSessionToken signs an HS256 JWT carrying the session id, the admin
// username as subject and the session expiry.
func NewSessionToken(secret, sessionID, username string, exp time.Time) (string, error) {
    now := time.Now().UTC()
    claims := SessionClaims{
        SessionID: sessionID,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   username,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp.UTC()),
        },
    }
    return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSessionToken verifies the signature and expiry of raw and returns
// its claims.  Only HMAC signing methods are accepted.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
    var claims SessionClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid || claims.SessionID == "" {
        return SessionClaims{}, ErrInvalidToken
    }
    return claims, nil
}
