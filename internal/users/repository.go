package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, is_admin, is_active, theme, personnel_id, service_unit_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.IsActive, &u.Theme, &u.PersonnelID, &u.ServiceUnitID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// List returns all users ordered by username.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Get returns a user by id.
func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// Count returns the number of accounts.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Create inserts a user.
func (r *Repository) Create(ctx context.Context, u User, passwordHash string) (User, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO users (username, password_hash, is_admin, is_active, theme, personnel_id, service_unit_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`,
		u.Username, passwordHash, u.IsAdmin, u.IsActive, u.Theme, u.PersonnelID, u.ServiceUnitID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, mapError(err)
	}
	return u, nil
}

// Update stores admin-managed fields.
func (r *Repository) Update(ctx context.Context, u User) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users
SET is_admin = $2, is_active = $3, personnel_id = $4, service_unit_id = $5, updated_at = NOW()
WHERE id = $1`, u.ID, u.IsAdmin, u.IsActive, u.PersonnelID, u.ServiceUnitID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword replaces the password hash.
func (r *Repository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	return err
}

// SetTheme stores the UI theme.
func (r *Repository) SetTheme(ctx context.Context, id int64, theme string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET theme = $2 WHERE id = $1`, id, theme)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PersonnelTaken reports whether another user links personnelID.
func (r *Repository) PersonnelTaken(ctx context.Context, personnelID, exceptUserID int64) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE personnel_id = $1 AND id <> $2)`, personnelID, exceptUserID).Scan(&taken)
	return taken, err
}

func mapError(err error) error {
	if !shared.IsUniqueViolation(err) {
		return err
	}
	switch shared.ConstraintName(err) {
	case "users_username_key":
		return httpx.ValidationErrors{"username": "already exists"}
	case "users_personnel_key":
		return httpx.ValidationErrors{"personnel_id": "already linked to another user"}
	default:
		return httpx.ErrDuplicate
	}
}

var _ RepositoryPort = (*Repository)(nil)
