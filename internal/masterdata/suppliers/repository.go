package suppliers

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, sup Supplier) (Supplier, error)
	Update(ctx context.Context, sup Supplier) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const supplierColumns = `id, afm, name, COALESCE(address, ''), COALESCE(city, ''), COALESCE(postal_code, ''),
	COALESCE(country, ''), COALESCE(bank_name, ''), COALESCE(iban, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSupplier(row rowScanner) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.AFM, &s.Name, &s.Address, &s.City, &s.PostalCode, &s.Country, &s.BankName, &s.IBAN, &s.CreatedAt)
	return s, err
}

// List uses a dynamic query for search and sorting.
func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND (name ILIKE $1 OR afm ILIKE $1)`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + supplierColumns + ` FROM suppliers` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	s, err := scanSupplier(r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id))
	return s, shared.MapError(err)
}

func (r *repository) Create(ctx context.Context, sup Supplier) (Supplier, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO suppliers (afm, name, address, city, postal_code, country, bank_name, iban)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
RETURNING `+supplierColumns,
		sup.AFM, sup.Name, sup.Address, sup.City, sup.PostalCode, sup.Country, sup.BankName, sup.IBAN)
	created, err := scanSupplier(row)
	return created, shared.MapError(err)
}

func (r *repository) Update(ctx context.Context, sup Supplier) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET afm = $2, name = $3, address = NULLIF($4, ''), city = NULLIF($5, ''),
	postal_code = NULLIF($6, ''), country = NULLIF($7, ''), bank_name = NULLIF($8, ''), iban = NULLIF($9, '')
WHERE id = $1`,
		sup.ID, sup.AFM, sup.Name, sup.Address, sup.City, sup.PostalCode, sup.Country, sup.BankName, sup.IBAN)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
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
	case "afm", "city", "created_at":
		col = sortBy
	}
	return col + " " + shared.SortDirection(sortDir) + ", id ASC"
}
