package handler

import (
	"net/http"
	"time"

	"github.com/albarakah/umrah-backoffice/internal/domain"
	"github.com/albarakah/umrah-backoffice/internal/infra/observability"
	"github.com/albarakah/umrah-backoffice/internal/infra/sse"
	"github.com/albarakah/umrah-backoffice/internal/port"
	"github.com/albarakah/umrah-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the application services the router dispatches to.
type Services struct {
	Auth          *service.AuthService
	Ledger        *service.LedgerService
	Jamaah        *service.JamaahService
	Packages      *service.PackageService
	Vendors       *service.VendorService
	Reports       *service.ReportService
	Chat          *service.ChatService
	Notifications *service.NotificationService
	Company       *service.CompanyService
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Role policy: ledger and debt mutations need owner or finance;
// master-data mutations (jamaah, packages, vendors) additionally allow
// admin; user management is owner only; reads and chat are open to any
// staff login.
func NewRouter(svcs Services, regions port.RegionFetcher, hub *sse.Hub, metrics *observability.Metrics, corsOrigins []string, dbPing func() error, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(dbPing))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	financeRoles := []string{domain.RoleOwner, domain.RoleFinance}
	staffRoles := []string{domain.RoleOwner, domain.RoleFinance, domain.RoleAdmin}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public auth routes
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))
		r.Post("/auth/refresh", authRefreshHandler(svcs.Auth, logger))

		// Everything below needs a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			// Session
			r.Post("/auth/logout", authLogoutHandler(svcs.Auth, logger))
			r.Put("/auth/password", authChangePasswordHandler(svcs.Auth, logger))
			r.Get("/auth/me", authMeHandler(svcs.Auth, logger))

			// User management (owner only)
			r.Group(func(r chi.Router) {
				r.Use(RequireRoles(domain.RoleOwner))
				r.Post("/auth/register", authRegisterHandler(svcs.Auth, logger))
				r.Get("/users", listUsersHandler(svcs.Auth, logger))
				r.Get("/users/{userId}", getUserHandler(svcs.Auth, logger))
				r.Put("/users/{userId}/role", updateUserRoleHandler(svcs.Auth, logger))
				r.Delete("/users/{userId}", deleteUserHandler(svcs.Auth, logger))
			})

			// Jamaah
			r.Get("/jamaah", listJamaahHandler(svcs.Jamaah, logger))
			r.Get("/jamaah/{jamaahId}", getJamaahHandler(svcs.Jamaah, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRoles(staffRoles...))
				r.Post("/jamaah", createJamaahHandler(svcs.Jamaah, logger))
				r.Put("/jamaah/{jamaahId}", updateJamaahHandler(svcs.Jamaah, logger))
				r.Post("/jamaah/{jamaahId}/cancel", cancelJamaahHandler(svcs.Jamaah, logger))
				r.Delete("/jamaah/{jamaahId}", deleteJamaahHandler(svcs.Jamaah, logger))
			})

			// Travel packages
			r.Get("/packages", listPackagesHandler(svcs.Packages, logger))
			r.Get("/packages/{packageId}", getPackageHandler(svcs.Packages, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRoles(staffRoles...))
				r.Post("/packages", createPackageHandler(svcs.Packages, logger))
				r.Put("/packages/{packageId}", updatePackageHandler(svcs.Packages, logger))
				r.Delete("/packages/{packageId}", deletePackageHandler(svcs.Packages, logger))
			})

			// Vendors
			r.Get("/vendors", listVendorsHandler(svcs.Vendors, logger))
			r.Get("/vendors/{vendorId}", getVendorHandler(svcs.Vendors, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRoles(staffRoles...))
				r.Post("/vendors", createVendorHandler(svcs.Vendors, logger))
				r.Put("/vendors/{vendorId}", updateVendorHandler(svcs.Vendors, logger))
				r.Delete("/vendors/{vendorId}", deleteVendorHandler(svcs.Vendors, logger))
			})

			// Vendor debts
			r.Get("/debts", listDebtsHandler(svcs.Vendors, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRoles(financeRoles...))
				r.Post("/debts", createDebtHandler(svcs.Vendors, logger))
				r.Put("/debts/{accountId}", updateDebtHandler(svcs.Vendors, logger))
				r.Post("/debts/{accountId}/pay", payDebtHandler(svcs.Ledger, logger))
			})

			// Ledger
			r.Get("/accounts/{accountId}", getAccountHandler(svcs.Ledger, logger))
			r.Get("/accounts/{accountId}/summary", getAccountSummaryHandler(svcs.Ledger, logger))
			r.Get("/transactions", listTransactionsHandler(svcs.Ledger, logger))
			r.Get("/transactions/{paymentId}", getTransactionHandler(svcs.Ledger, logger))
			r.Group(func(r chi.Router) {
				r.Use(RequireRoles(financeRoles...))
				r.Post("/accounts/{accountId}/income", recordIncomeHandler(svcs.Ledger, logger))
				r.Post("/accounts/{accountId}/expense", recordExpenseHandler(svcs.Ledger, logger))
				r.Patch("/transactions/{paymentId}", editTransactionHandler(svcs.Ledger, logger))
				r.Delete("/transactions/{paymentId}", deleteTransactionHandler(svcs.Ledger, logger))
			})

			// Reports & audit
			r.Get("/dashboard", dashboardHandler(svcs.Reports, logger))
			r.Get("/reports/financial", financialReportHandler(svcs.Reports, logger))
			r.Get("/audit", listAuditHandler(svcs.Reports, logger))
			r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))

			// Internal chat
			r.Get("/chat/conversations", listConversationsHandler(svcs.Chat, logger))
			r.Post("/chat/conversations", openConversationHandler(svcs.Chat, logger))
			r.Get("/chat/conversations/{conversationId}/messages", listMessagesHandler(svcs.Chat, logger))
			r.Post("/chat/conversations/{conversationId}/messages", sendMessageHandler(svcs.Chat, logger))
			r.Get("/chat/unread-count", unreadCountHandler(svcs.Chat, logger))
			r.Get("/chat/stream", chatStreamHandler(hub, logger))

			// Notifications
			r.Get("/notifications", listNotificationsHandler(svcs.Notifications, logger))
			r.Put("/notifications/read-all", markAllNotificationsReadHandler(svcs.Notifications, logger))
			r.Put("/notifications/{notificationId}/read", markNotificationReadHandler(svcs.Notifications, logger))
			r.Delete("/notifications/{notificationId}", deleteNotificationHandler(svcs.Notifications, logger))

			// Company profile (any staff reads, only the owner writes)
			r.Get("/company", getCompanyHandler(svcs.Company, logger))
			r.With(RequireRoles(domain.RoleOwner)).Put("/company", updateCompanyHandler(svcs.Company, logger))

			// Region lookups (wilayah)
			r.Get("/regions/provinces", provincesHandler(regions, logger))
			r.Get("/regions/provinces/{provinceId}/regencies", regenciesHandler(regions, logger))
			r.Get("/regions/regencies/{regencyId}/districts", districtsHandler(regions, logger))
			r.Get("/regions/districts/{districtId}/villages", villagesHandler(regions, logger))
		})
	})

	return r
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(dbPing func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		dbStatus := "healthy"
		if dbPing != nil {
			if err := dbPing(); err != nil {
				status = "degraded"
				dbStatus = "unhealthy"
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": status,
			"services": []map[string]any{
				{"name": "sqlite", "status": dbStatus, "lastChecked": time.Now().Format(time.RFC3339)},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.LedgerSnapshot())
	}
}
