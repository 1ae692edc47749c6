package personnel

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Personnel, int, error)
	ListActive(ctx context.Context, unitID *int64) ([]Personnel, error)
	Get(ctx context.Context, id int64) (Personnel, error)
	Create(ctx context.Context, p Personnel) (Personnel, error)
	Update(ctx context.Context, p Personnel) error
	UnitExists(ctx context.Context, unitID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const personnelColumns = `id, agm, COALESCE(aem, ''), COALESCE(rank, ''), COALESCE(specialty, ''),
	first_name, last_name, is_active, service_unit_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPersonnel(row rowScanner) (Personnel, error) {
	var p Personnel
	err := row.Scan(&p.ID, &p.AGM, &p.AEM, &p.Rank, &p.Specialty, &p.FirstName, &p.LastName, &p.IsActive, &p.ServiceUnitID, &p.CreatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Personnel, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (last_name ILIKE $` + n + ` OR first_name ILIKE $` + n + ` OR agm ILIKE $` + n + `)`
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND is_active = $` + strconv.Itoa(len(args))
	}
	if filters.ServiceUnitID != nil {
		args = append(args, *filters.ServiceUnitID)
		where += ` AND service_unit_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM personnel`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + personnelColumns + ` FROM personnel` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}
	return r.query(ctx, query, total, args...)
}

func (r *repository) ListActive(ctx context.Context, unitID *int64) ([]Personnel, error) {
	query := `SELECT ` + personnelColumns + ` FROM personnel WHERE is_active`
	args := []any{}
	if unitID != nil {
		query += ` AND service_unit_id = $1`
		args = append(args, *unitID)
	}
	out, _, err := r.query(ctx, query, 0, args...)
	return out, err
}

func (r *repository) query(ctx context.Context, query string, total int, args ...any) ([]Personnel, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Personnel
	for rows.Next() {
		p, err := scanPersonnel(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Personnel, error) {
	p, err := scanPersonnel(r.pool.QueryRow(ctx, `SELECT `+personnelColumns+` FROM personnel WHERE id = $1`, id))
	return p, shared.MapError(err)
}

func (r *repository) Create(ctx context.Context, p Personnel) (Personnel, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO personnel (agm, aem, rank, specialty, first_name, last_name, is_active, service_unit_id)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8)
RETURNING `+personnelColumns,
		p.AGM, p.AEM, p.Rank, p.Specialty, p.FirstName, p.LastName, p.IsActive, p.ServiceUnitID)
	created, err := scanPersonnel(row)
	return created, shared.MapError(err)
}

func (r *repository) Update(ctx context.Context, p Personnel) error {
	tag, err := r.pool.Exec(ctx, `UPDATE personnel SET agm = $2, aem = NULLIF($3, ''), rank = NULLIF($4, ''),
	specialty = NULLIF($5, ''), first_name = $6, last_name = $7, is_active = $8, service_unit_id = $9
WHERE id = $1`,
		p.ID, p.AGM, p.AEM, p.Rank, p.Specialty, p.FirstName, p.LastName, p.IsActive, p.ServiceUnitID)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UnitExists(ctx context.Context, unitID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM service_units WHERE id = $1)`, unitID).Scan(&ok)
	return ok, err
}

func sortOrder(sortBy, sortDir string) string {
	dir := shared.SortDirection(sortDir)
	switch sortBy {
	case "agm", "created_at":
		return sortBy + " " + dir + ", id ASC"
	case "name":
		return "last_name " + dir + ", first_name " + dir + ", id ASC"
	}
	return "rank " + dir + ", last_name ASC, first_name ASC, id ASC"
}
