package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MrEthical07/goSaaS/domain"
)

const userColumns = `id, COALESCE(name, ''), email, password_hash, role, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func scopeClause(scope domain.Scope) string {
	if scope == domain.ScopeActive {
		return " AND deleted_at IS NULL"
	}
	return ""
}

func (s *Store) UserByID(ctx context.Context, id int64, scope domain.Scope) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1` + scopeClause(scope) + ` LIMIT 1`
	u, err := scanUser(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("user %d", id))
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string, scope domain.Scope) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)` + scopeClause(scope) + ` LIMIT 1`
	u, err := scanUser(s.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "user by email")
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.Role == "" {
		u.Role = domain.RoleMember
	}
	query := `
		INSERT INTO users (name, email, password_hash, role)
		VALUES (NULLIF($1, ''), $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := s.pool.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, string(u.Role)).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapError(err, "create user")
}

func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET name = NULLIF($1, ''),
		    email = $2,
		    password_hash = $3,
		    role = $4,
		    updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`
	err := s.pool.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash, string(u.Role), u.ID).Scan(&u.UpdatedAt)
	return mapError(err, fmt.Sprintf("update user %d", u.ID))
}

func (s *Store) SoftDeleteUser(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE users
		SET deleted_at = $2,
		    email = left(email, $3 - length('-' || id::text || '-deleted')) || '-' || id::text || '-deleted',
		    updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	tag, err := s.pool.Exec(ctx, query, id, at, domain.MaxEmailLength)
	if err != nil {
		return mapError(err, fmt.Sprintf("delete user %d", id))
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, fmt.Sprintf("delete user %d", id))
	}
	return nil
}
