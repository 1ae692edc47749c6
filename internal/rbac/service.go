package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates that the user does not exist.
	ErrNotFound = errors.New("rbac: not found")
	// ErrInactive indicates a disabled user account.
	ErrInactive = errors.New("rbac: user inactive")
)

// Service resolves actors from the users and service_units tables.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

const loadActorSQL = `SELECT u.id, u.username, u.is_admin, u.is_active, u.personnel_id,
	su.id, su.manager_personnel_id, su.deputy_personnel_id
FROM users u
LEFT JOIN service_units su ON su.id = u.service_unit_id
WHERE u.id = $1`

// LoadActor implements ActorLoader.
func (s *Service) LoadActor(ctx context.Context, userID int64) (Actor, error) {
	var (
		id          int64
		username    string
		isAdmin     bool
		isActive    bool
		personnelID *int64
		unitID      *int64
		managerID   *int64
		deputyID    *int64
	)
	err := s.pool.QueryRow(ctx, loadActorSQL, userID).Scan(&id, &username, &isAdmin, &isActive, &personnelID, &unitID, &managerID, &deputyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Actor{}, ErrNotFound
		}
		return Actor{}, err
	}
	if !isActive {
		return Actor{}, ErrInactive
	}
	var unit *UnitRoles
	if unitID != nil {
		unit = &UnitRoles{UnitID: *unitID, ManagerPersonnelID: managerID, DeputyPersonnelID: deputyID}
	}
	return NewActor(id, username, isAdmin, personnelID, unit), nil
}
