// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios.
package repository

import "errors"

// ErrNotFound is returned when a keyed lookup matches nothing.  Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrInvalidName is returned when a photo filename reduces to nothing
// usable once directory components are stripped.
var ErrInvalidName = errors.New("invalid file name")
