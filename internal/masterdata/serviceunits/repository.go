package serviceunits

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]ServiceUnit, int, error)
	Get(ctx context.Context, id int64) (ServiceUnit, error)
	Create(ctx context.Context, unit ServiceUnit) (ServiceUnit, error)
	Update(ctx context.Context, unit ServiceUnit) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const unitColumns = `id, COALESCE(code, ''), description, COALESCE(short_name, ''), COALESCE(aahit, ''),
	COALESCE(commander, ''), COALESCE(curator, ''), COALESCE(supply_officer, ''),
	manager_personnel_id, deputy_personnel_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (ServiceUnit, error) {
	var u ServiceUnit
	err := row.Scan(&u.ID, &u.Code, &u.Description, &u.ShortName, &u.AAHIT, &u.Commander, &u.Curator,
		&u.SupplyOfficer, &u.ManagerPersonnelID, &u.DeputyPersonnelID, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]ServiceUnit, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND (description ILIKE $1 OR code ILIKE $1 OR short_name ILIKE $1)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_units`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + unitColumns + ` FROM service_units` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ServiceUnit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (ServiceUnit, error) {
	u, err := scanUnit(r.pool.QueryRow(ctx, `SELECT `+unitColumns+` FROM service_units WHERE id = $1`, id))
	return u, shared.MapError(err)
}

func (r *repository) Create(ctx context.Context, u ServiceUnit) (ServiceUnit, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO service_units (code, description, short_name, aahit, commander, curator,
	supply_officer, manager_personnel_id, deputy_personnel_id)
VALUES (NULLIF($1, ''), $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
RETURNING `+unitColumns,
		u.Code, u.Description, u.ShortName, u.AAHIT, u.Commander, u.Curator, u.SupplyOfficer,
		u.ManagerPersonnelID, u.DeputyPersonnelID)
	created, err := scanUnit(row)
	return created, shared.MapError(err)
}

func (r *repository) Update(ctx context.Context, u ServiceUnit) error {
	tag, err := r.pool.Exec(ctx, `UPDATE service_units SET code = NULLIF($2, ''), description = $3,
	short_name = NULLIF($4, ''), aahit = NULLIF($5, ''), commander = NULLIF($6, ''), curator = NULLIF($7, ''),
	supply_officer = NULLIF($8, ''), manager_personnel_id = $9, deputy_personnel_id = $10, updated_at = NOW()
WHERE id = $1`,
		u.ID, u.Code, u.Description, u.ShortName, u.AAHIT, u.Commander, u.Curator, u.SupplyOfficer,
		u.ManagerPersonnelID, u.DeputyPersonnelID)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM service_units WHERE id = $1`, id)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	col := "description"
	switch sortBy {
	case "code", "short_name", "created_at":
		col = sortBy
	}
	return col + " " + shared.SortDirection(sortDir) + ", id ASC"
}
