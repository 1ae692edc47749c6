package shared

import (
	"context"

	internalShared "github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

// AuditPort records master data changes.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// RecordAudit snapshots before and after into an audit entry. Failures are
// swallowed; the change itself already succeeded.
func RecordAudit(ctx context.Context, port AuditPort, entity string, id int64, action internalShared.AuditAction, before, after any) {
	if port == nil {
		return
	}
	log := internalShared.AuditLog{EntityType: entity, EntityID: id, Action: action}
	if before != nil {
		log.Before = internalShared.Snapshot(before)
	}
	if after != nil {
		log.After = internalShared.Snapshot(after)
	}
	_ = port.Record(ctx, log)
}
