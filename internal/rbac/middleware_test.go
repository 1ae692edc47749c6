package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

type stubLoader struct {
	actors map[int64]Actor
	err    error
}

func (s stubLoader) LoadActor(ctx context.Context, userID int64) (Actor, error) {
	if s.err != nil {
		return Actor{}, s.err
	}
	a, ok := s.actors[userID]
	if !ok {
		return Actor{}, ErrNotFound
	}
	return a, nil
}

type countingDenials struct{ reasons []string }

func (c *countingDenials) RecordDenial(reason string) { c.reasons = append(c.reasons, reason) }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func withSession(t *testing.T, r *http.Request, userID string) *http.Request {
	t.Helper()
	sm := shared.NewSessionManager(nil, "sid", "secret", time.Hour, false)
	sess, err := sm.Load(r.Context(), r)
	require.NoError(t, err)
	sess.SetUser(userID)
	return r.WithContext(shared.ContextWithSession(r.Context(), sess))
}

func TestLoadActorFromSession(t *testing.T) {
	viewer := NewActor(7, "viewer", false, nil, &UnitRoles{UnitID: 5})
	m := Middleware{Loader: stubLoader{actors: map[int64]Actor{7: viewer}}}

	var seen Actor
	h := m.LoadActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFromContext(r.Context())
	}))
	req := withSession(t, httptest.NewRequest(http.MethodGet, "/procurements", nil), "7")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, int64(7), seen.UserID)
}

func TestLoadActorDropsUnknownUser(t *testing.T) {
	m := Middleware{Loader: stubLoader{}}
	req := withSession(t, httptest.NewRequest(http.MethodGet, "/", nil), "42")

	var found bool
	m.LoadActor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = ActorFromContext(r.Context())
	})).ServeHTTP(httptest.NewRecorder(), req)

	require.False(t, found)
	require.Empty(t, shared.SessionFromContext(req.Context()).User())
}

func TestRequireManager(t *testing.T) {
	denials := &countingDenials{}
	m := Middleware{Denials: denials}
	h := m.RequireManager(okHandler)

	anon := httptest.NewRecorder()
	h.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, anon.Code)

	viewer := NewActor(1, "v", false, nil, &UnitRoles{UnitID: 5})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, req.WithContext(ContextWithActor(req.Context(), viewer)))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, []string{"manager"}, denials.reasons)

	manager := NewActor(2, "m", false, id(1), &UnitRoles{UnitID: 5, ManagerPersonnelID: id(1)})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ContextWithActor(req.Context(), manager)))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMutationGuard(t *testing.T) {
	m := Middleware{SelfService: map[string]Action{
		"/me/theme":    ActionTheme,
		"/feedback":    ActionFeedback,
		"/auth/logout": ActionLogout,
	}}
	h := m.MutationGuard(okHandler)
	viewer := NewActor(1, "v", false, nil, &UnitRoles{UnitID: 5})

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/procurements/1", http.StatusNoContent},
		{http.MethodPost, "/procurements", http.StatusForbidden},
		{http.MethodDelete, "/procurements/1", http.StatusForbidden},
		{http.MethodPost, "/me/theme", http.StatusNoContent},
		{http.MethodPost, "/feedback/", http.StatusNoContent},
		{http.MethodPost, "/auth/logout", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req.WithContext(ContextWithActor(req.Context(), viewer)))
		require.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
	}

	anon := httptest.NewRecorder()
	h.ServeHTTP(anon, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	require.Equal(t, http.StatusNoContent, anon.Code)
}
