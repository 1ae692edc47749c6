package options

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
)

type Repository interface {
	EnsureCategory(ctx context.Context, key, label string) (Category, error)
	ListValues(ctx context.Context, categoryID int64, unitID *int64, activeOnly bool) ([]Value, error)
	GetValue(ctx context.Context, id int64) (Value, error)
	CreateValue(ctx context.Context, v Value) (Value, error)
	UpdateValue(ctx context.Context, v Value) error
	InsertValueIfMissing(ctx context.Context, v Value) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const valueColumns = `id, category_id, value, is_active, sort_order, service_unit_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanValue(row rowScanner) (Value, error) {
	var v Value
	err := row.Scan(&v.ID, &v.CategoryID, &v.Value, &v.IsActive, &v.SortOrder, &v.ServiceUnitID)
	return v, err
}

// EnsureCategory returns the category for key, creating it when missing.
func (r *repository) EnsureCategory(ctx context.Context, key, label string) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `INSERT INTO option_categories (key, label) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
RETURNING id, key, label`, key, label).Scan(&c.ID, &c.Key, &c.Label)
	return c, err
}

func (r *repository) ListValues(ctx context.Context, categoryID int64, unitID *int64, activeOnly bool) ([]Value, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+valueColumns+` FROM option_values
WHERE category_id = $1
  AND ($2::bigint IS NULL OR service_unit_id = $2)
  AND (NOT $3 OR is_active)
ORDER BY sort_order, value, id`, categoryID, unitID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Value
	for rows.Next() {
		v, err := scanValue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repository) GetValue(ctx context.Context, id int64) (Value, error) {
	v, err := scanValue(r.pool.QueryRow(ctx, `SELECT `+valueColumns+` FROM option_values WHERE id = $1`, id))
	return v, shared.MapError(err)
}

func (r *repository) CreateValue(ctx context.Context, v Value) (Value, error) {
	created, err := scanValue(r.pool.QueryRow(ctx, `INSERT INTO option_values (category_id, value, is_active, sort_order, service_unit_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING `+valueColumns, v.CategoryID, v.Value, v.IsActive, v.SortOrder, v.ServiceUnitID))
	return created, shared.MapError(err)
}

func (r *repository) UpdateValue(ctx context.Context, v Value) error {
	tag, err := r.pool.Exec(ctx, `UPDATE option_values SET value = $2, is_active = $3, sort_order = $4, service_unit_id = $5
WHERE id = $1`, v.ID, v.Value, v.IsActive, v.SortOrder, v.ServiceUnitID)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) InsertValueIfMissing(ctx context.Context, v Value) (bool, error) {
	tag, err := r.pool.Exec(ctx, `INSERT INTO option_values (category_id, value, is_active, sort_order)
VALUES ($1, $2, $3, $4)
ON CONFLICT (category_id, value) DO NOTHING`, v.CategoryID, v.Value, v.IsActive, v.SortOrder)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
