package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type memoryRepo struct {
	users  map[int64]User
	hashes map[int64]string
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: map[int64]User{}, hashes: map[int64]string{}}
}

func (m *memoryRepo) List(ctx context.Context) ([]User, error) {
	out := []User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) Count(ctx context.Context) (int, error) { return len(m.users), nil }

func (m *memoryRepo) Create(ctx context.Context, u User, hash string) (User, error) {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return User{}, httpx.ValidationErrors{"username": "already exists"}
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	m.hashes[u.ID] = hash
	return u, nil
}

func (m *memoryRepo) Update(ctx context.Context, u User) error {
	if _, ok := m.users[u.ID]; !ok {
		return ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *memoryRepo) SetPassword(ctx context.Context, id int64, hash string) error {
	m.hashes[id] = hash
	return nil
}

func (m *memoryRepo) SetTheme(ctx context.Context, id int64, theme string) error {
	u := m.users[id]
	u.Theme = theme
	m.users[id] = u
	return nil
}

func (m *memoryRepo) PersonnelTaken(ctx context.Context, personnelID, exceptUserID int64) (bool, error) {
	for id, u := range m.users {
		if id != exceptUserID && u.PersonnelID != nil && *u.PersonnelID == personnelID {
			return true, nil
		}
	}
	return false, nil
}

type stubPersonnel map[int64]bool

func (s stubPersonnel) IsActive(ctx context.Context, id int64) (bool, error) { return s[id], nil }

type recordingAudit struct{ logs []shared.AuditLog }

func (r *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	r.logs = append(r.logs, log)
	return nil
}

func ptr(v int64) *int64 { return &v }

func newService() (*Service, *memoryRepo, *recordingAudit) {
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	return NewService(repo, stubPersonnel{1: true, 2: true, 3: false}, audit, bcrypt.MinCost), repo, audit
}

func TestCreateHashesPassword(t *testing.T) {
	svc, repo, audit := newService()
	u, err := svc.Create(context.Background(), CreateInput{Username: " nikos ", Password: "s3cretpass", PersonnelID: ptr(1)})
	require.NoError(t, err)
	require.Equal(t, "nikos", u.Username)
	require.True(t, u.IsActive)
	require.Equal(t, ThemeDefault, u.Theme)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hashes[u.ID]), []byte("s3cretpass")))
	require.Len(t, audit.logs, 1)
	require.NotContains(t, audit.logs[0].After, "password_hash")
}

func TestCreateRules(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Username: "a", Password: "short", PersonnelID: ptr(3)})
	var verr httpx.ValidationErrors
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "must be at least 8 characters", verr["password"])
	require.Equal(t, "must be active personnel", verr["personnel_id"])

	_, err = svc.Create(ctx, CreateInput{Username: "a", Password: "longenough", PersonnelID: ptr(1)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Username: "b", Password: "longenough", PersonnelID: ptr(1)})
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "already linked to another user", verr["personnel_id"])
}

func TestUpdateKeepsOwnPersonnelAndResetsPassword(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	u, err := svc.Create(ctx, CreateInput{Username: "a", Password: "longenough", PersonnelID: ptr(1)})
	require.NoError(t, err)
	oldHash := repo.hashes[u.ID]

	updated, err := svc.Update(ctx, u.ID, UpdateInput{IsAdmin: true, IsActive: false, PersonnelID: ptr(1), ServiceUnitID: ptr(7)})
	require.NoError(t, err)
	require.True(t, updated.IsAdmin)
	require.False(t, updated.IsActive)
	require.Equal(t, oldHash, repo.hashes[u.ID])

	_, err = svc.Update(ctx, u.ID, UpdateInput{IsActive: true, PersonnelID: ptr(2), Password: "brandnewpass"})
	require.NoError(t, err)
	require.NotEqual(t, oldHash, repo.hashes[u.ID])

	require.ErrorIs(t, svc.ResetPassword(ctx, u.ID, "1234567"), httpx.ErrValidation)
	require.NoError(t, svc.ResetPassword(ctx, u.ID, "12345678"))
	require.ErrorIs(t, svc.ResetPassword(ctx, 99, "12345678"), httpx.ErrNotFound)
}

func TestSetTheme(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	u, err := svc.Create(ctx, CreateInput{Username: "a", Password: "longenough", PersonnelID: ptr(1)})
	require.NoError(t, err)
	actor := rbac.Actor{UserID: u.ID}

	require.NoError(t, svc.SetTheme(ctx, actor, ThemeOcean))
	require.Equal(t, ThemeOcean, repo.users[u.ID].Theme)
	require.ErrorIs(t, svc.SetTheme(ctx, actor, "neon"), httpx.ErrValidation)
}

func TestEnsureAdminOnlyOnce(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()
	created, err := svc.EnsureAdmin(ctx, "admin", "changeme123")
	require.NoError(t, err)
	require.True(t, created)
	require.True(t, repo.users[1].IsAdmin)

	created, err = svc.EnsureAdmin(ctx, "admin2", "changeme123")
	require.NoError(t, err)
	require.False(t, created)
	require.Len(t, repo.users, 1)
}
