package auth

import "context"

// Store describes the persistence operations the auth core consumes. Every
// returned User and Role carries its role/permission graph preloaded;
// nothing in this package goes back to the store to complete a record.
type Store interface {
	// FindUserByEmail returns ErrNotFound for an unknown identifier.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// FindRolesByName returns the roles matching the given names, each with
	// its permission set. Unknown names are simply absent from the result.
	FindRolesByName(ctx context.Context, names []string) ([]Role, error)

	// SaveUser persists a new user and its role links atomically, filling
	// in the generated ID and timestamps. A uniqueness violation on the
	// email surfaces as ErrDuplicateEmail.
	SaveUser(ctx context.Context, user *User) error
}
