// Package service holds the booking rules: appointment lifecycle, day
// closing, the expiry sweep and notification dispatch.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by the services.  Handlers map them to HTTP
// status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrDayClosed    = errors.New("day is closed for bookings")
	ErrSlotTaken    = errors.New("slot already booked")
	ErrStorage      = errors.New("storage failure")
	ErrNotification = errors.New("notification failed")
	ErrNotFound     = errors.New("not found")
	ErrSweepRunning = errors.New("sweep already running")
)

// ValidationError lists the offending fields by their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
