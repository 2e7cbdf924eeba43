package auth

import (
	"context"
	"errors"
	"strings"
)

// Service orchestrates credential verification, authority resolution and
// token issuance for the login and registration flows.
type Service struct {
	store Store
	codec *Codec
}

// NewService constructs a Service.
func NewService(store Store, codec *Codec) *Service {
	return &Service{store: store, codec: codec}
}

// Authenticate checks an email/password pair against the stored record.
// Unknown email and wrong password both come back as ErrInvalidCredentials;
// a correct password on a disabled, locked or expired account is the
// distinct ErrAccountState. Store failures other than a missing record pass
// through untouched so an outage never masquerades as bad credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		// Burn a bcrypt comparison so the unknown-identifier path costs
		// the same as a password mismatch.
		_ = VerifyPassword(dummyHash, password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Usable() {
		return nil, ErrAccountState
	}
	return user, nil
}

// Login verifies credentials and issues a bearer token carrying the
// principal's current authorities.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	token, expiresAt, err := s.codec.Issue(user.Email, Authorities(user.Roles))
	if err != nil {
		return Session{}, err
	}
	return Session{
		Subject:   user.Email,
		Message:   "User logged success",
		Token:     token,
		ExpiresAt: expiresAt,
		Success:   true,
	}, nil
}

// Register creates a new account and logs it in. The requested role names
// must resolve to at least one existing role; registration never falls back
// to a default role. The password is hashed before anything is persisted,
// and no token is issued unless the save succeeded.
func (s *Service) Register(ctx context.Context, reg Registration) (Session, error) {
	email := normalizeEmail(reg.Email)
	if email == "" || reg.Password == "" {
		return Session{}, ErrInvalidCredentials
	}
	roles, err := s.store.FindRolesByName(ctx, dedupeNames(reg.RoleNames))
	if err != nil {
		return Session{}, err
	}
	if len(roles) == 0 {
		return Session{}, ErrInvalidRoleSelection
	}
	hash, err := HashPassword(reg.Password)
	if err != nil {
		return Session{}, err
	}
	user := &User{
		Email:        email,
		PasswordHash: hash,
		Firstname:    strings.TrimSpace(reg.Firstname),
		Lastname:     strings.TrimSpace(reg.Lastname),
		DateOfBirth:  reg.DateOfBirth,
		Enabled:      true,
		Roles:        roles,
	}
	if err := s.store.SaveUser(ctx, user); err != nil {
		return Session{}, err
	}
	token, expiresAt, err := s.codec.Issue(user.Email, Authorities(user.Roles))
	if err != nil {
		return Session{}, err
	}
	return Session{
		Subject:   user.Email,
		Message:   "User created success",
		Token:     token,
		ExpiresAt: expiresAt,
		Success:   true,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
