package audit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL audit store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const auditColumns = `id, entity_type, entity_id, action, before_data, after_data, user_id,
	COALESCE(username_snapshot, ''), COALESCE(ip_address, ''), created_at`

func whereClause(f TimelineFilters) (string, []any) {
	where := ` WHERE 1=1`
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		where += ` AND ` + cond + ` $` + strconv.Itoa(len(args))
	}
	if !f.From.IsZero() {
		add(`created_at >=`, f.From)
	}
	if !f.To.IsZero() {
		add(`created_at <`, f.To)
	}
	if f.Actor != "" {
		add(`username_snapshot =`, f.Actor)
	}
	if f.EntityType != "" {
		add(`entity_type =`, f.EntityType)
	}
	if f.EntityID != nil {
		add(`entity_id =`, *f.EntityID)
	}
	if f.Action != "" {
		add(`action =`, f.Action)
	}
	return where, args
}

func (r *pgRepository) Window(ctx context.Context, f TimelineFilters, offset, limit int) ([]shared.AuditLog, error) {
	where, args := whereClause(f)
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + where + ` ORDER BY created_at DESC, id DESC` +
		` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	return r.query(ctx, query, append(args, limit, offset)...)
}

func (r *pgRepository) All(ctx context.Context, f TimelineFilters) ([]shared.AuditLog, error) {
	where, args := whereClause(f)
	return r.query(ctx, `SELECT `+auditColumns+` FROM audit_logs`+where+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *pgRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) query(ctx context.Context, sql string, args ...any) ([]shared.AuditLog, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []shared.AuditLog{}
	for rows.Next() {
		var (
			log           shared.AuditLog
			action        string
			before, after []byte
		)
		if err := rows.Scan(&log.ID, &log.EntityType, &log.EntityID, &action, &before, &after,
			&log.UserID, &log.Username, &log.IP, &log.At); err != nil {
			return nil, err
		}
		log.Action = shared.AuditAction(action)
		if len(before) > 0 {
			if err := json.Unmarshal(before, &log.Before); err != nil {
				return nil, err
			}
		}
		if len(after) > 0 {
			if err := json.Unmarshal(after, &log.After); err != nil {
				return nil, err
			}
		}
		out = append(out, log)
	}
	return out, rows.Err()
}
