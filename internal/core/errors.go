package core

import "errors"

// Error taxonomy shared by services and storage. Validation problems use
// the sentinel errors in domain.go; gateway failures are wrapped with %w
// and surfaced as-is on mutating paths.
var (
	// ErrNotAuthenticated means no owner id was supplied. Every operation
	// is owner-scoped, so nothing can proceed without one.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrOwnerMismatch means the entity exists but belongs to another
	// owner. Treated as a security fault, never silently ignored.
	ErrOwnerMismatch = errors.New("access denied: owner mismatch")
)
