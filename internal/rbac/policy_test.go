package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func id(v int64) *int64 { return &v }

func unitScope(v int64) UnitScope { return UnitScope{UnitID: id(v)} }

func TestClassify(t *testing.T) {
	require.Equal(t, RoleManager, Classify(id(10), id(10), id(11)))
	require.Equal(t, RoleDeputy, Classify(id(11), id(10), id(11)))
	require.Equal(t, RoleMember, Classify(id(12), id(10), id(11)))
	require.Equal(t, RoleMember, Classify(nil, nil, nil), "missing links never match")
	require.Equal(t, RoleMember, Classify(id(10), nil, nil))
}

func TestNewActorDerivesRole(t *testing.T) {
	unit := &UnitRoles{UnitID: 5, ManagerPersonnelID: id(100), DeputyPersonnelID: id(101)}

	manager := NewActor(1, "m", false, id(100), unit)
	require.True(t, manager.IsManager())
	require.True(t, manager.CanManage())
	require.Equal(t, int64(5), *manager.ServiceUnitID)

	deputy := NewActor(2, "d", false, id(101), unit)
	require.True(t, deputy.IsDeputy())
	require.True(t, deputy.CanManage())

	viewer := NewActor(3, "v", false, id(102), unit)
	require.False(t, viewer.CanManage())

	noUnit := NewActor(4, "x", false, id(100), nil)
	require.Nil(t, noUnit.ServiceUnitID)
	require.Equal(t, RoleNone, noUnit.Role)
	require.False(t, noUnit.CanManage())

	admin := NewActor(5, "a", true, nil, nil)
	require.True(t, admin.CanManage())
}

func TestViewerOfUnit(t *testing.T) {
	viewer := NewActor(1, "viewer", false, id(50), &UnitRoles{UnitID: 5, ManagerPersonnelID: id(99)})

	require.True(t, CanView(viewer, unitScope(5)))
	require.False(t, CanEdit(viewer, unitScope(5)))
	require.False(t, CanView(viewer, unitScope(7)))
	require.False(t, CanEdit(viewer, unitScope(7)))
}

func TestManagerOfOtherUnit(t *testing.T) {
	manager := NewActor(1, "mgr", false, id(70), &UnitRoles{UnitID: 7, ManagerPersonnelID: id(70)})

	require.True(t, CanEdit(manager, unitScope(7)))
	require.False(t, CanView(manager, unitScope(5)))
	require.False(t, CanEdit(manager, unitScope(5)))
}

func TestActorWithoutUnitSeesNothing(t *testing.T) {
	a := NewActor(1, "lost", false, nil, nil)

	require.False(t, CanView(a, unitScope(5)))
	require.False(t, CanView(a, UnitScope{}))
	require.False(t, CanEdit(a, UnitScope{}))
}

func TestAdminBypass(t *testing.T) {
	admin := NewActor(1, "root", true, nil, nil)

	require.True(t, CanView(admin, unitScope(5)))
	require.True(t, CanEdit(admin, UnitScope{}))
	require.True(t, CanManageCommittee(admin, 9))
}

func TestCanManageCommittee(t *testing.T) {
	unit := &UnitRoles{UnitID: 5, ManagerPersonnelID: id(1), DeputyPersonnelID: id(2)}

	require.True(t, CanManageCommittee(NewActor(1, "m", false, id(1), unit), 5))
	require.True(t, CanManageCommittee(NewActor(2, "d", false, id(2), unit), 5))
	require.False(t, CanManageCommittee(NewActor(1, "m", false, id(1), unit), 6))
	require.False(t, CanManageCommittee(NewActor(3, "v", false, id(3), unit), 5))
}

func TestEditImpliesView(t *testing.T) {
	units := []*UnitRoles{
		nil,
		{UnitID: 5, ManagerPersonnelID: id(1), DeputyPersonnelID: id(2)},
		{UnitID: 7, ManagerPersonnelID: id(3)},
	}
	personnel := []*int64{nil, id(1), id(2), id(3), id(4)}
	scopes := []UnitScope{{}, unitScope(5), unitScope(7), unitScope(9)}

	for _, admin := range []bool{false, true} {
		for _, u := range units {
			for _, p := range personnel {
				a := NewActor(1, "u", admin, p, u)
				for _, s := range scopes {
					if CanEdit(a, s) {
						require.True(t, CanView(a, s))
					}
				}
			}
		}
	}
}

func TestCanMutate(t *testing.T) {
	viewer := NewActor(1, "v", false, id(9), &UnitRoles{UnitID: 5})
	manager := NewActor(2, "m", false, id(1), &UnitRoles{UnitID: 5, ManagerPersonnelID: id(1)})

	require.False(t, CanMutate(viewer, ""))
	require.False(t, CanMutate(viewer, Action("procurement")))
	require.True(t, CanMutate(viewer, ActionTheme))
	require.True(t, CanMutate(viewer, ActionFeedback))
	require.True(t, CanMutate(viewer, ActionLogout))
	require.True(t, CanMutate(manager, ""))
}
