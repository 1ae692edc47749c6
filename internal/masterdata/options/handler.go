package options

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes mounts category endpoints. Per-category permissions are
// enforced by the service.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireAuth)
	r.Get("/{key}/active", h.Active)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireManager)
		r.Get("/{key}", h.List)
		r.Post("/{key}", h.Add)
		r.Put("/{key}/{id}", h.Update)
	})
}

func (h *Handler) Active(w http.ResponseWriter, r *http.Request) {
	values, err := h.service.ActiveValues(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, "list active options", err)
		return
	}
	httpx.JSON(w, http.StatusOK, values)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	values, err := h.service.Values(r.Context(), actor, chi.URLParam(r, "key"))
	if err != nil {
		h.fail(w, "list options", err)
		return
	}
	if values == nil {
		values = []Value{}
	}
	httpx.JSON(w, http.StatusOK, values)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var in ValueInput
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	created, err := h.service.AddValue(r.Context(), actor, chi.URLParam(r, "key"), in)
	if err != nil {
		h.fail(w, "add option", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := shared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in ValueInput
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	updated, err := h.service.UpdateValue(r.Context(), actor, chi.URLParam(r, "key"), id, in)
	if err != nil {
		h.fail(w, "update option", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
