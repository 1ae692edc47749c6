package withholding

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Profile, int, error)
	Get(ctx context.Context, id int64) (Profile, error)
	Create(ctx context.Context, p Profile) (Profile, error)
	Update(ctx context.Context, p Profile) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const profileColumns = `id, name, mt_eloa, eadhsy, k1, k2, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (Profile, error) {
	var p Profile
	err := row.Scan(&p.ID, &p.Name, &p.MtEloa, &p.Eadhsy, &p.K1, &p.K2, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Profile, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND is_active = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM withholding_profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + profileColumns + ` FROM withholding_profiles` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM withholding_profiles WHERE id = $1`, id))
	return p, shared.MapError(err)
}

func (r *repository) Create(ctx context.Context, p Profile) (Profile, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO withholding_profiles (name, mt_eloa, eadhsy, k1, k2, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+profileColumns, p.Name, p.MtEloa, p.Eadhsy, p.K1, p.K2, p.IsActive)
	created, err := scanProfile(row)
	return created, shared.MapError(err)
}

func (r *repository) Update(ctx context.Context, p Profile) error {
	tag, err := r.pool.Exec(ctx, `UPDATE withholding_profiles
SET name = $2, mt_eloa = $3, eadhsy = $4, k1 = $5, k2 = $6, is_active = $7, updated_at = NOW()
WHERE id = $1`, p.ID, p.Name, p.MtEloa, p.Eadhsy, p.K1, p.K2, p.IsActive)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM withholding_profiles WHERE id = $1`, id)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	col := "name"
	switch sortBy {
	case "created_at", "updated_at":
		col = sortBy
	}
	return col + " " + shared.SortDirection(sortDir) + ", id ASC"
}
