package auth

import "time"

// User represents a registered account together with its role assignments.
// Roles are loaded eagerly by the store so authority resolution never goes
// back to the database.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Firstname    string
	Lastname     string
	DateOfBirth  time.Time

	// Account-state flags. Enabled is positive ("may log in"); the other
	// three are fault flags where true means the account is blocked.
	Enabled            bool
	AccountExpired     bool
	AccountLocked      bool
	CredentialsExpired bool

	Roles     []Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable reports whether every account-state gate passes.
func (u *User) Usable() bool {
	return u.Enabled && !u.AccountExpired && !u.AccountLocked && !u.CredentialsExpired
}

// Role groups permissions under a unique name such as "ADMIN" or "USER".
type Role struct {
	ID          string
	Name        string
	Permissions []Permission
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is an atomic capability such as "CREATE" or "READ".
type Permission struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Registration carries the fields a new account is created from. The
// plaintext password only ever lives in this value; the service hashes it
// before anything is persisted or logged.
type Registration struct {
	Firstname   string
	Lastname    string
	DateOfBirth time.Time
	Email       string
	Password    string
	RoleNames   []string
}

// Session is the outcome of a successful login or registration: the subject
// identifier plus a freshly issued bearer token.
type Session struct {
	Subject   string
	Message   string
	Token     string
	ExpiresAt time.Time
	Success   bool
}
