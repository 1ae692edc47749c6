package feedback

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	mdshared "github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
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

// MountRoutes registers submission routes for every user and triage routes
// for administrators.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuth)
		r.Post("/", h.submit)
		r.Get("/mine", h.mine)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAdmin)
		r.Get("/", h.list)
		r.Put("/{id}/status", h.setStatus)
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var in SubmitInput
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	f, err := h.service.Submit(r.Context(), actor, in)
	if err != nil {
		h.fail(w, "submit feedback", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	actor, _ := rbac.ActorFromContext(r.Context())
	items, err := h.service.Mine(r.Context(), actor)
	if err != nil {
		h.fail(w, "list own feedback", err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	lf := mdshared.FiltersFromRequest(r)
	filter := Filter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Page:     lf.Page,
		Limit:    lf.Limit,
	}
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, "list feedback", err)
		return
	}
	httpx.JSON(w, http.StatusOK, mdshared.NewListResponse(items, total, lf))
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in StatusInput
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	f, err := h.service.SetStatus(r.Context(), id, in.Status)
	if err != nil {
		h.fail(w, "set feedback status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
