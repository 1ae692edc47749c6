package audithttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/audit"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

const (
	defaultDateRange  = 30 * 24 * time.Hour
	maxDateRangeHours = 24 * 366
	dateLayout        = "2006-01-02"
)

// TimelineService defines the business contract for audit data.
type TimelineService interface {
	Timeline(ctx context.Context, filters audit.TimelineFilters) (audit.Result, error)
	Export(ctx context.Context, filters audit.TimelineFilters) ([]shared.AuditLog, error)
}

// Handler serves the admin audit listing and CSV export.
type Handler struct {
	logger  *slog.Logger
	service TimelineService
	rbac    rbac.Middleware
	now     func() time.Time
}

// NewHandler builds an audit handler.
func NewHandler(logger *slog.Logger, service TimelineService, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac, now: time.Now}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "load audit timeline", err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.handleServerError(w, "export audit timeline", err)
		return
	}
	csvBytes, err := audit.WriteCSV(rows)
	if err != nil {
		h.handleServerError(w, "encode csv", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\"audit-log.csv\"")
	if _, err := w.Write(csvBytes); err != nil {
		h.logger.Warn("write csv", slog.Any("error", err))
	}
}

// parseFilters reads from/to as dates; to is inclusive and defaults to today.
func (h *Handler) parseFilters(r *http.Request) (audit.TimelineFilters, error) {
	q := r.URL.Query()
	errs := httpx.ValidationErrors{}
	now := h.now().UTC()

	toTime := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			errs["to"] = "must be a date (YYYY-MM-DD)"
		}
		toTime = parsed
	}
	fromTime := toTime.Add(-defaultDateRange)
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			errs["from"] = "must be a date (YYYY-MM-DD)"
		}
		fromTime = parsed
	}
	if len(errs) == 0 {
		if fromTime.After(toTime) {
			errs["from"] = "must not be after to"
		} else if toTime.Sub(fromTime) > maxDateRangeHours*time.Hour {
			errs["from"] = "range must not exceed one year"
		}
	}

	filters := audit.TimelineFilters{
		From:       fromTime,
		To:         toTime.Add(24 * time.Hour),
		Actor:      q.Get("actor"),
		EntityType: q.Get("entity_type"),
		Action:     q.Get("action"),
		Page:       1,
	}
	if v := strings.TrimSpace(q.Get("entity_id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			errs["entity_id"] = "must be a positive integer"
		} else {
			filters.EntityID = &id
		}
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page <= 0 {
			errs["page"] = "must be a positive integer"
		}
		filters.Page = page
	}
	if v := strings.TrimSpace(q.Get("page_size")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			errs["page_size"] = "must be a positive integer"
		}
		filters.PageSize = size
	}
	if len(errs) > 0 {
		return audit.TimelineFilters{}, errs
	}
	return filters, nil
}

func (h *Handler) handleServerError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	httpx.RespondError(w, err)
}
