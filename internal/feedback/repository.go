package feedback

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL feedback store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const feedbackColumns = `f.id, f.user_id, COALESCE(u.username, ''), f.related_procurement_id,
	f.category, f.subject, f.message, f.status, f.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row rowScanner) (Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.UserID, &f.Username, &f.RelatedProcurementID,
		&f.Category, &f.Subject, &f.Message, &f.Status, &f.CreatedAt)
	return f, err
}

func (r *repository) Create(ctx context.Context, f Feedback) (Feedback, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO feedback (user_id, related_procurement_id, category, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
		f.UserID, f.RelatedProcurementID, f.Category, f.Subject, f.Message, f.Status).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		if shared.PgCode(err) == "23503" {
			return Feedback{}, httpx.ValidationErrors{"related_procurement_id": "does not exist"}
		}
		return Feedback{}, err
	}
	return f, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Feedback, error) {
	f, err := scanFeedback(r.pool.QueryRow(ctx, `SELECT `+feedbackColumns+`
		FROM feedback f LEFT JOIN users u ON u.id = f.user_id WHERE f.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Feedback{}, ErrNotFound
	}
	return f, err
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Feedback, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += ` AND f.status = $` + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where += ` AND f.category = $` + strconv.Itoa(len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += ` AND f.user_id = $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM feedback f`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + feedbackColumns + ` FROM feedback f LEFT JOIN users u ON u.id = f.user_id` +
		where + ` ORDER BY f.created_at DESC, f.id DESC`
	if filter.Limit > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.Limit
		}
		query += ` LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
		args = append(args, filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Feedback{}
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

func (r *repository) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE feedback SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
