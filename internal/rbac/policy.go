package rbac

// Scoped is anything owned by a service unit, such as a procurement.
type Scoped interface {
	OwningUnitID() *int64
}

// UnitScope adapts a bare unit id to Scoped.
type UnitScope struct {
	UnitID *int64
}

// OwningUnitID implements Scoped.
func (s UnitScope) OwningUnitID() *int64 { return s.UnitID }

// CanView allows admins and any member of the owning unit.
func CanView(a Actor, r Scoped) bool {
	if a.IsAdmin {
		return true
	}
	return sameID(a.ServiceUnitID, r.OwningUnitID())
}

// CanEdit allows admins and the manager or deputy of the owning unit.
func CanEdit(a Actor, r Scoped) bool {
	if a.IsAdmin {
		return true
	}
	return sameID(a.ServiceUnitID, r.OwningUnitID()) && a.CanManage()
}

// CanManageCommittee allows admins and the manager or deputy of unitID.
func CanManageCommittee(a Actor, unitID int64) bool {
	if a.IsAdmin {
		return true
	}
	return sameID(a.ServiceUnitID, &unitID) && a.CanManage()
}

// Action names a state-changing request for the mutation guard.
type Action string

// Self-service actions every authenticated actor may perform.
const (
	ActionTheme    Action = "theme"
	ActionFeedback Action = "feedback"
	ActionLogout   Action = "logout"
)

var selfService = map[Action]struct{}{
	ActionTheme:    {},
	ActionFeedback: {},
	ActionLogout:   {},
}

// IsSelfService reports whether action is on the self-service allow-list.
func IsSelfService(action Action) bool {
	_, ok := selfService[action]
	return ok
}

// CanMutate is the global safety net in front of every state-changing
// request: actors who manage nothing may only perform self-service actions.
func CanMutate(a Actor, action Action) bool {
	if a.CanManage() {
		return true
	}
	return IsSelfService(action)
}
