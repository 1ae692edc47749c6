package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

// ActorLoader resolves a user id to an actor.
type ActorLoader interface {
	LoadActor(ctx context.Context, userID int64) (Actor, error)
}

// DenialRecorder observes forbidden decisions.
type DenialRecorder interface {
	RecordDenial(reason string)
}

// Middleware wires access-control helpers for HTTP handlers.
type Middleware struct {
	Loader  ActorLoader
	Logger  *slog.Logger
	Denials DenialRecorder

	// SelfService maps request paths to the self-service action they perform.
	SelfService map[string]Action
}

// LoadActor resolves the session user into an Actor stored on the request
// context. Anonymous requests pass through untouched.
func (m Middleware) LoadActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := m.Loader.LoadActor(r.Context(), userID)
		if err != nil {
			if errors.Is(err, ErrInactive) || errors.Is(err, ErrNotFound) {
				if sess := shared.SessionFromContext(r.Context()); sess != nil {
					sess.SetUser("")
				}
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Error("rbac load actor", slog.Any("error", err), slog.Int64("user_id", userID))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
	})
}

// RequireAuth rejects anonymous requests.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows only global administrators.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.require("admin", func(a Actor) bool { return a.IsAdmin }, next)
}

// RequireManager allows administrators and unit managers or deputies.
func (m Middleware) RequireManager(next http.Handler) http.Handler {
	return m.require("manager", Actor.CanManage, next)
}

// MutationGuard refuses state-changing requests from actors who manage
// nothing, unless the path is a registered self-service action.
func (m Middleware) MutationGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		action := m.SelfService[strings.TrimSuffix(r.URL.Path, "/")]
		if !CanMutate(actor, action) {
			m.deny(w, "mutation", actor)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) require(reason string, allowed func(Actor) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "login required")
			return
		}
		if !allowed(actor) {
			m.deny(w, reason, actor)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m Middleware) deny(w http.ResponseWriter, reason string, actor Actor) {
	if m.Denials != nil {
		m.Denials.RecordDenial(reason)
	}
	if m.Logger != nil {
		m.Logger.Warn("rbac denied", slog.String("reason", reason), slog.Int64("user_id", actor.UserID))
	}
	httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("rbac parse user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
