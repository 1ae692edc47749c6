package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApprovalStage names one ΗΩΠ decision marker of a procurement.
type ApprovalStage string

const (
	StageCommitment          ApprovalStage = "hop_commitment"
	StageForward1Commitment  ApprovalStage = "hop_forward1_commitment"
	StageForward2Commitment  ApprovalStage = "hop_forward2_commitment"
	StagePreapproval         ApprovalStage = "hop_preapproval"
	StageForward1Preapproval ApprovalStage = "hop_forward1_preapproval"
	StageForward2Preapproval ApprovalStage = "hop_forward2_preapproval"
	StageApproval            ApprovalStage = "hop_approval"
)

// ApprovalAction enumerates approval log actions.
type ApprovalAction string

const (
	// ApprovalSet records a marker being filled in or replaced.
	ApprovalSet ApprovalAction = "SET"
	// ApprovalClear records a marker being removed.
	ApprovalClear ApprovalAction = "CLEAR"
)

// ApprovalLog represents a single marker change.
type ApprovalLog struct {
	ID            int64          `json:"id"`
	ProcurementID int64          `json:"procurement_id"`
	Stage         ApprovalStage  `json:"stage"`
	Action        ApprovalAction `json:"action"`
	Value         string         `json:"value,omitempty"`
	ActorID       int64          `json:"actor_id"`
	At            time.Time      `json:"at"`
}

// MarkerChange describes the old and new value of a marker.
type MarkerChange struct {
	Stage ApprovalStage
	From  string
	To    string
}

// DiffMarkers lists the markers whose value changed, in stage order.
func DiffMarkers(before, after map[ApprovalStage]string) []MarkerChange {
	order := []ApprovalStage{
		StageCommitment, StageForward1Commitment, StageForward2Commitment,
		StagePreapproval, StageForward1Preapproval, StageForward2Preapproval,
		StageApproval,
	}
	var out []MarkerChange
	for _, stage := range order {
		if before[stage] != after[stage] {
			out = append(out, MarkerChange{Stage: stage, From: before[stage], To: after[stage]})
		}
	}
	return out
}

// ApprovalRecorder persists marker history.
type ApprovalRecorder struct {
	pool *pgxpool.Pool
}

// NewApprovalRecorder constructs ApprovalRecorder.
func NewApprovalRecorder(pool *pgxpool.Pool) *ApprovalRecorder {
	return &ApprovalRecorder{pool: pool}
}

// WriteApprovals records changes through db, usually the transaction that
// stored the procurement.
func WriteApprovals(ctx context.Context, db Execer, procurementID, actorID int64, changes []MarkerChange) error {
	for _, c := range changes {
		action := ApprovalSet
		if c.To == "" {
			action = ApprovalClear
		}
		_, err := db.Exec(ctx, `INSERT INTO approvals (procurement_id, stage, action, value, actor_id, at)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, 0), NOW())`, procurementID, string(c.Stage), string(action), c.To, actorID)
		if err != nil {
			return err
		}
	}
	return nil
}

// List returns the marker history of a procurement.
func (r *ApprovalRecorder) List(ctx context.Context, procurementID int64) ([]ApprovalLog, error) {
	if r == nil {
		return nil, errors.New("approval recorder not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, procurement_id, stage, action, COALESCE(value, ''), COALESCE(actor_id, 0), at
FROM approvals WHERE procurement_id=$1 ORDER BY at ASC, id ASC`, procurementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ApprovalLog
	for rows.Next() {
		var l ApprovalLog
		var stage, action string
		if err := rows.Scan(&l.ID, &l.ProcurementID, &stage, &action, &l.Value, &l.ActorID, &l.At); err != nil {
			return nil, err
		}
		l.Stage = ApprovalStage(stage)
		l.Action = ApprovalAction(action)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
