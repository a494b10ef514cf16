// Package common defines shared constants and sentinel errors used across
// FinSight components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	// ErrorStoreCorrupt marks a persistent collection that exists on disk
	// but cannot be decoded. It is surfaced instead of being downgraded to
	// an empty collection, so a damaged store never looks like "no users".
	ErrorStoreCorrupt = errors.New("store unreadable")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Session lifecycle errors. Unknown and expired tokens are deliberately
	// indistinguishable to callers.
	ErrorSessionInvalid = errors.New("invalid or expired session")
)

// Registration validation errors. The texts are user-facing and are
// returned verbatim by the HTTP layer.
var (
	ErrorUsernameExists      = errors.New("Username already exists")
	ErrorCredentialsRequired = errors.New("Username and password are required")
	ErrorInvalidRole         = errors.New("Invalid role selected")
)
