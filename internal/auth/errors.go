package auth

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password. Callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrAccountState means the password was correct but the account is
	// disabled, locked or expired.
	ErrAccountState = errors.New("auth: account state rejected")

	// ErrInvalidRoleSelection means a registration requested roles that
	// resolved to an empty set.
	ErrInvalidRoleSelection = errors.New("auth: requested roles do not exist")

	// ErrDuplicateEmail is the store-level uniqueness violation surfaced
	// as a recoverable condition.
	ErrDuplicateEmail = errors.New("auth: email already registered")

	// ErrNotFound is returned by stores for missing records.
	ErrNotFound = errors.New("auth: not found")

	// ErrMissingSecret refuses token operation without a signing secret.
	ErrMissingSecret = errors.New("auth: signing secret is not configured")
)

// Token validation failures, one per distinguishable cause.
var (
	ErrTokenMalformed   = errors.New("auth: token malformed")
	ErrTokenSignature   = errors.New("auth: token signature invalid")
	ErrTokenExpired     = errors.New("auth: token expired")
	ErrTokenNotYetValid = errors.New("auth: token not yet valid")
)
