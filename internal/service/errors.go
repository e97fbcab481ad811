package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors raised at the point of detection and translated to HTTP
// status codes at the request boundary.
var (
	// ErrInvalidCredentials covers wrong password and unknown identifier
	// alike, and wrong device secret and unknown serial alike. The two
	// cases are deliberately indistinguishable to resist enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden means the principal is authenticated but lacks the
	// required role on the target site.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ConflictError reports a uniqueness violation with a client-facing
// message naming the conflicting field.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// RateLimitedError reports how long the caller must wait before the rate
// limit window resets.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}
