package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booknet.org/internal/auth"
	"booknet.org/internal/ids"
)

// FindUserByEmail loads a user with roles and role permissions eagerly so
// the service never comes back for the rest of the graph.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	var u auth.User
	err := s.db.QueryRowContext(ctx, `
		select id, email, password_hash, firstname, lastname, date_of_birth,
		       enabled, account_expired, account_locked, credentials_expired,
		       created_at, updated_at
		from users
		where email = $1
	`, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.Lastname, &u.DateOfBirth,
		&u.Enabled, &u.AccountExpired, &u.AccountLocked, &u.CredentialsExpired,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	roles, err := s.rolesForUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

// FindRolesByName resolves role names to roles with preloaded permissions.
// Names without a matching role are absent from the result.
func (s *Store) FindRolesByName(ctx context.Context, names []string) ([]auth.Role, error) {
	var roles []auth.Role
	for _, name := range names {
		var role auth.Role
		err := s.db.QueryRowContext(ctx, `
			select id, name, created_at, updated_at
			from roles
			where name = $1
		`, name).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		perms, err := s.permissionsForRole(ctx, role.ID)
		if err != nil {
			return nil, err
		}
		role.Permissions = perms
		roles = append(roles, role)
	}
	return roles, nil
}

// SaveUser inserts the user row and its role links in one transaction. A
// duplicate email aborts the whole insert and surfaces ErrDuplicateEmail.
func (s *Store) SaveUser(ctx context.Context, user *auth.User) error {
	if user.ID == "" {
		user.ID = ids.New()
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		insert into users (id, email, password_hash, firstname, lastname, date_of_birth,
		                   enabled, account_expired, account_locked, credentials_expired,
		                   created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
	`, user.ID, user.Email, user.PasswordHash, user.Firstname, user.Lastname, user.DateOfBirth,
		user.Enabled, user.AccountExpired, user.AccountLocked, user.CredentialsExpired, now)
	if err != nil {
		if isUniqueViolation(err) {
			return auth.ErrDuplicateEmail
		}
		return err
	}

	for _, role := range user.Roles {
		if _, err := tx.ExecContext(ctx, `
			insert into user_roles (user_id, role_id) values ($1, $2)
		`, user.ID, role.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *Store) rolesForUser(ctx context.Context, userID string) ([]auth.Role, error) {
	rows, err := s.db.QueryContext(ctx, `
		select r.id, r.name, r.created_at, r.updated_at
		from roles r
		join user_roles ur on ur.role_id = r.id
		where ur.user_id = $1
		order by r.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []auth.Role
	for rows.Next() {
		var role auth.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range roles {
		perms, err := s.permissionsForRole(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Permissions = perms
	}
	return roles, nil
}

func (s *Store) permissionsForRole(ctx context.Context, roleID string) ([]auth.Permission, error) {
	rows, err := s.db.QueryContext(ctx, `
		select p.id, p.name, p.created_at
		from permissions p
		join role_permissions rp on rp.permission_id = p.id
		where rp.role_id = $1
		order by p.name
	`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []auth.Permission
	for rows.Next() {
		var p auth.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
