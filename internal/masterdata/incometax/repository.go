package incometax

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Rule, int, error)
	Get(ctx context.Context, id int64) (Rule, error)
	Create(ctx context.Context, rule Rule) (Rule, error)
	Update(ctx context.Context, rule Rule) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const ruleColumns = `id, description, rate_percent, threshold_amount, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (Rule, error) {
	var r Rule
	err := row.Scan(&r.ID, &r.Description, &r.RatePercent, &r.Threshold, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Rule, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where += ` AND description ILIKE $` + strconv.Itoa(len(args))
	}
	if filters.IsActive != nil {
		args = append(args, *filters.IsActive)
		where += ` AND is_active = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM income_tax_rules`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + ruleColumns + ` FROM income_tax_rules` + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
	if filters.Limit > 0 {
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filters.Limit, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rule)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Rule, error) {
	rule, err := scanRule(r.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM income_tax_rules WHERE id = $1`, id))
	return rule, shared.MapError(err)
}

func (r *repository) Create(ctx context.Context, rule Rule) (Rule, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO income_tax_rules (description, rate_percent, threshold_amount, is_active)
VALUES ($1, $2, $3, $4)
RETURNING `+ruleColumns, rule.Description, rule.RatePercent, rule.Threshold, rule.IsActive)
	created, err := scanRule(row)
	return created, shared.MapError(err)
}

func (r *repository) Update(ctx context.Context, rule Rule) error {
	tag, err := r.pool.Exec(ctx, `UPDATE income_tax_rules
SET description = $2, rate_percent = $3, threshold_amount = $4, is_active = $5, updated_at = NOW()
WHERE id = $1`, rule.ID, rule.Description, rule.RatePercent, rule.Threshold, rule.IsActive)
	if err != nil {
		return shared.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM income_tax_rules WHERE id = $1`, id)
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
	case "rate_percent", "threshold_amount", "created_at":
		col = sortBy
	}
	return col + " " + shared.SortDirection(sortDir) + ", id ASC"
}
