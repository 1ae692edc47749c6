package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	audithttp "github.com/XristosAndreopo/invoice-procurement-management/internal/audit/http"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/auth"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/feedback"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/incometax"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/options"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/personnel"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/serviceunits"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/suppliers"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/masterdata/withholding"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/observability"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/procurement"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/rbac"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
	"github.com/XristosAndreopo/invoice-procurement-management/internal/users"
	"github.com/XristosAndreopo/invoice-procurement-management/jobs"
	"github.com/XristosAndreopo/invoice-procurement-management/report"
)

// SelfServicePaths lists the state-changing endpoints any authenticated user
// may call, keyed by their mounted path.
var SelfServicePaths = map[string]rbac.Action{
	"/theme":       rbac.ActionTheme,
	"/feedback":    rbac.ActionFeedback,
	"/auth/logout": rbac.ActionLogout,
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware
	Idempotency    IdempotencyClaimer
	Metrics        *observability.Metrics

	AuthHandler        *auth.Handler
	ProcurementHandler *procurement.Handler
	ServiceUnitHandler *serviceunits.Handler
	PersonnelHandler   *personnel.Handler
	SupplierHandler    *suppliers.Handler
	OptionHandler      *options.Handler
	WithholdingHandler *withholding.Handler
	IncomeTaxHandler   *incometax.Handler
	UsersHandler       *users.Handler
	FeedbackHandler    *feedback.Handler
	AuditHandler       *audithttp.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		RBAC:           params.RBACMiddleware,
		Idempotency:    params.Idempotency,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/nav", navHandler)

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/procurements", params.ProcurementHandler.MountRoutes)
	r.Route("/masterdata", func(r chi.Router) {
		r.Route("/service-units", params.ServiceUnitHandler.MountRoutes)
		r.Route("/personnel", params.PersonnelHandler.MountRoutes)
		r.Route("/suppliers", params.SupplierHandler.MountRoutes)
		r.Route("/options", params.OptionHandler.MountRoutes)
		r.Route("/withholding-profiles", params.WithholdingHandler.MountRoutes)
		r.Route("/income-tax-rules", params.IncomeTaxHandler.MountRoutes)
	})
	r.Route("/users", params.UsersHandler.MountRoutes)
	r.Group(params.UsersHandler.MountSelfService)
	r.Route("/feedback", params.FeedbackHandler.MountRoutes)
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	return r
}
