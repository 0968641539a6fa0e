// Package service holds the access-authorization core: assignment rules,
// scan authorization, and the audit logging that every mutation carries.
// Each externally visible operation runs as one database transaction so an
// entity mutation and its audit rows commit together or not at all.
package service

import (
	"errors"

	"github.com/crucial707/makerspace-access/internal/repo"
)

// Domain errors, checked with errors.Is:
//
//	if errors.Is(err, service.ErrNotFound) { ... }
var (
	// ErrValidation is returned for a missing or malformed input before any
	// store access happens.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced id does not resolve.
	ErrNotFound = repo.ErrNotFound

	// ErrConflict is returned when a uniqueness or state precondition is
	// violated (double assignment, inactive user, unavailable device).
	ErrConflict = repo.ErrConflict
)
