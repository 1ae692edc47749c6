package rbac

// Role is an actor's standing inside its own service unit.
type Role int

const (
	// RoleNone applies to actors without a service unit.
	RoleNone Role = iota
	// RoleMember may view the unit's procurements.
	RoleMember
	// RoleDeputy is the unit's backup approver.
	RoleDeputy
	// RoleManager is the unit's primary approver.
	RoleManager
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return "member"
	case RoleDeputy:
		return "deputy"
	case RoleManager:
		return "manager"
	default:
		return "none"
	}
}

// UnitRoles names the personnel designated as manager and deputy of a unit.
type UnitRoles struct {
	UnitID             int64
	ManagerPersonnelID *int64
	DeputyPersonnelID  *int64
}

// Classify derives the role of a personnel member inside a unit. A missing
// personnel link never matches a designation.
func Classify(personnelID, managerPersonnelID, deputyPersonnelID *int64) Role {
	switch {
	case sameID(personnelID, managerPersonnelID):
		return RoleManager
	case sameID(personnelID, deputyPersonnelID):
		return RoleDeputy
	default:
		return RoleMember
	}
}

func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// Actor is the authenticated user an access decision is made for.
type Actor struct {
	UserID        int64
	Username      string
	IsAdmin       bool
	ServiceUnitID *int64
	PersonnelID   *int64
	Role          Role
}

// NewActor builds an actor and derives its role from unit. unit may be nil
// when the user has no service unit.
func NewActor(userID int64, username string, isAdmin bool, personnelID *int64, unit *UnitRoles) Actor {
	a := Actor{UserID: userID, Username: username, IsAdmin: isAdmin, PersonnelID: personnelID, Role: RoleNone}
	if unit != nil {
		id := unit.UnitID
		a.ServiceUnitID = &id
		a.Role = Classify(personnelID, unit.ManagerPersonnelID, unit.DeputyPersonnelID)
	}
	return a
}

// IsManager reports whether the actor manages its unit.
func (a Actor) IsManager() bool { return a.Role == RoleManager }

// IsDeputy reports whether the actor is its unit's deputy.
func (a Actor) IsDeputy() bool { return a.Role == RoleDeputy }

// CanManage is true for admins and for the manager or deputy of a unit.
func (a Actor) CanManage() bool {
	return a.IsAdmin || a.IsManager() || a.IsDeputy()
}

// GetID implements Principal.
func (a Actor) GetID() int64 { return a.UserID }

// IsSuperUser implements Principal.
func (a Actor) IsSuperUser() bool { return a.IsAdmin }

// Principal describes the authenticated actor.
type Principal interface {
	GetID() int64
	IsSuperUser() bool
}
