package shared

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditAction enumerates audit log actions.
type AuditAction string

const (
	// AuditCreate marks an inserted record.
	AuditCreate AuditAction = "CREATE"
	// AuditUpdate marks a modified record.
	AuditUpdate AuditAction = "UPDATE"
	// AuditDelete marks a removed record.
	AuditDelete AuditAction = "DELETE"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ID         int64          `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	Action     AuditAction    `json:"action"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	UserID     *int64         `json:"user_id,omitempty"`
	Username   string         `json:"username,omitempty"`
	IP         string         `json:"ip,omitempty"`
	At         time.Time      `json:"at"`
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx so audit rows can share the
// transaction of the change they describe.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the log entry outside of any transaction.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	return WriteAudit(ctx, l.pool, log)
}

// WriteAudit inserts log through db, filling actor and address from the
// request metadata when the entry does not carry them.
func WriteAudit(ctx context.Context, db Execer, log AuditLog) error {
	if log.Action == "" || log.EntityType == "" || log.EntityID == 0 {
		return errors.New("audit log requires action/entity_type/entity_id")
	}
	meta := RequestMetaFromContext(ctx)
	if log.UserID == nil && meta.UserID != 0 {
		id := meta.UserID
		log.UserID = &id
	}
	if log.Username == "" {
		log.Username = meta.Username
	}
	if log.IP == "" {
		log.IP = meta.IP
	}
	before, err := snapshotJSON(log.Before)
	if err != nil {
		return err
	}
	after, err := snapshotJSON(log.After)
	if err != nil {
		return err
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err = db.Exec(ctx, `INSERT INTO audit_logs (entity_type, entity_id, action, before_data, after_data, user_id, username_snapshot, ip_address, created_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), COALESCE($9, NOW()))`,
		log.EntityType, log.EntityID, string(log.Action), before, after, log.UserID, log.Username, log.IP, at)
	return err
}

// Snapshot flattens v into a field map through its JSON representation.
func Snapshot(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func snapshotJSON(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}
