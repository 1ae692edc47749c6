package refdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/costing"
)

// PGLoader reads reference rows straight from Postgres.
type PGLoader struct {
	pool *pgxpool.Pool
}

// NewPGLoader returns a Loader backed by pool.
func NewPGLoader(pool *pgxpool.Pool) *PGLoader {
	return &PGLoader{pool: pool}
}

// Profile implements Loader.
func (l *PGLoader) Profile(ctx context.Context, id int64) (costing.WithholdingProfile, error) {
	var p costing.WithholdingProfile
	err := l.pool.QueryRow(ctx, `SELECT id, name, mt_eloa, eadhsy, k1, k2, is_active
FROM withholding_profiles WHERE id = $1`, id).Scan(&p.ID, &p.Name, &p.MtEloa, &p.Eadhsy, &p.K1, &p.K2, &p.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// Rule implements Loader.
func (l *PGLoader) Rule(ctx context.Context, id int64) (costing.IncomeTaxRule, error) {
	var r costing.IncomeTaxRule
	err := l.pool.QueryRow(ctx, `SELECT id, description, rate_percent, threshold_amount, is_active
FROM income_tax_rules WHERE id = $1`, id).Scan(&r.ID, &r.Description, &r.RatePercent, &r.Threshold, &r.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return r, ErrNotFound
	}
	return r, err
}
