package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	mdshared "github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
)

// Handler manages procurement endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: httpx.NewValidator(), rbac: rbac}
}

// MountRoutes registers procurement routes. Ownership checks happen in the
// service; the groups only gate by role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuth)
		r.Get("/", h.list(ViewAll))
		r.Get("/inbox", h.list(ViewInbox))
		r.Get("/pending", h.list(ViewPending))
		r.Get("/{id}", h.show)
		r.Get("/{id}/approvals", h.approvals)
		r.Get("/{id}/analysis", h.analysis)
		r.Get("/{id}/analysis.pdf", h.analysisPDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireManager)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/lines", h.addLine)
		r.Delete("/{id}/lines/{lineID}", h.removeLine)
		r.Post("/{id}/suppliers", h.addSupplier)
		r.Delete("/{id}/suppliers/{linkID}", h.removeSupplier)
		r.Put("/{id}/suppliers/{linkID}/winner", h.setWinner)
	})
}

func (h *Handler) list(view View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := rbac.ActorFromContext(r.Context())
		items, err := h.service.List(r.Context(), actor, view, r.URL.Query().Get("search"))
		if err != nil {
			h.fail(w, "list procurements", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"view": view, "items": items})
	}
}

func (h *Handler) approvals(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	logs, err := h.service.Approvals(r.Context(), actor, id)
	if err != nil {
		h.fail(w, "list approvals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, logs)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	detail, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		h.fail(w, "get procurement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	result, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		h.fail(w, "create procurement", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in Input
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	result, err := h.service.Update(r.Context(), actor, id, in)
	if err != nil {
		h.fail(w, "update procurement", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		h.fail(w, "delete procurement", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in LineInput
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	line, err := h.service.AddLine(r.Context(), actor, id, in)
	if err != nil {
		h.fail(w, "add line", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, line)
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	id, childID, err := twoIDs(r, "lineID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	if err := h.service.RemoveLine(r.Context(), actor, id, childID); err != nil {
		h.fail(w, "remove line", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addSupplier(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in SupplierInput
	if err := httpx.Bind(r, h.validate, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	link, err := h.service.AddSupplier(r.Context(), actor, id, in)
	if err != nil {
		h.fail(w, "add supplier", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, link)
}

func (h *Handler) removeSupplier(w http.ResponseWriter, r *http.Request) {
	id, childID, err := twoIDs(r, "linkID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	if err := h.service.RemoveSupplier(r.Context(), actor, id, childID); err != nil {
		h.fail(w, "remove supplier", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setWinner(w http.ResponseWriter, r *http.Request) {
	id, childID, err := twoIDs(r, "linkID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	link, err := h.service.SetWinner(r.Context(), actor, id, childID)
	if err != nil {
		h.fail(w, "set winner", err)
		return
	}
	httpx.JSON(w, http.StatusOK, link)
}

func (h *Handler) analysis(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	analysis, err := h.service.PaymentAnalysis(r.Context(), actor, id)
	if err != nil {
		h.fail(w, "payment analysis", err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *Handler) analysisPDF(w http.ResponseWriter, r *http.Request) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	actor, _ := rbac.ActorFromContext(r.Context())
	pdf, err := h.service.PaymentAnalysisPDF(r.Context(), actor, id)
	if err != nil {
		if httpx.IsClientError(err) {
			httpx.RespondError(w, err)
			return
		}
		h.logger.Error("render payment analysis", slog.Any("error", err))
		status := http.StatusBadGateway
		if errors.Is(err, ErrRendererUnavailable) {
			status = http.StatusServiceUnavailable
		}
		httpx.Problem(w, status, http.StatusText(status), "")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=analysis-"+strconv.FormatInt(id, 10)+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func twoIDs(r *http.Request, child string) (int64, int64, error) {
	id, err := mdshared.IDParam(r, "id")
	if err != nil {
		return 0, 0, err
	}
	childID, err := mdshared.IDParam(r, child)
	if err != nil {
		return 0, 0, err
	}
	return id, childID, nil
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
