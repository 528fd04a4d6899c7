package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karatworks/aurumpos-backend/api/controllers"
	"github.com/karatworks/aurumpos-backend/api/middleware"
	"github.com/karatworks/aurumpos-backend/internal/audit"
	authsvc "github.com/karatworks/aurumpos-backend/internal/auth"
	"github.com/karatworks/aurumpos-backend/internal/catalog"
	"github.com/karatworks/aurumpos-backend/internal/customers"
	"github.com/karatworks/aurumpos-backend/internal/ledger"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/internal/sales"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	"github.com/karatworks/aurumpos-backend/internal/users"
	"github.com/karatworks/aurumpos-backend/pkg/auth/session"
	"github.com/karatworks/aurumpos-backend/pkg/config"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/metrics"
	"github.com/karatworks/aurumpos-backend/pkg/redis"
)

// NewRouter wires the full HTTP surface: health and metrics probes, the
// public auth endpoints, and the authenticated /api/v1 tree. Capability
// gates sit on the routes they protect; everything else relies on the
// store context seeded from the access token.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	promRegistry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	sessions session.AccessSessionChecker,
	authService authsvc.Service,
	catalogService catalog.Service,
	customerService customers.Service,
	registerService register.Service,
	salesService sales.Service,
	ledgerService ledger.Service,
	auditService audit.Service,
	storeService stores.Service,
	userService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.Healthz(dbP, redisClient, logg))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		// Staff accounts span stores, so the users tree skips the store
		// context the register surface requires.
		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireCapability(enums.CapabilityUserManage, logg))
			r.Get("/", controllers.UserList(userService, logg))
			r.Post("/", controllers.UserCreate(userService, logg))
			r.Patch("/{userID}", controllers.UserUpdate(userService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStore(logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.ProductList(catalogService, logg))
				r.Get("/barcode/{barcode}", controllers.ProductByBarcode(catalogService, logg))
				r.Get("/{productID}", controllers.ProductGet(catalogService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityCatalogWrite, logg)).Post("/", controllers.ProductCreate(catalogService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityCatalogWrite, logg)).Patch("/{productID}", controllers.ProductUpdate(catalogService, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.CustomerList(customerService, logg))
				r.Get("/{customerID}", controllers.CustomerGet(customerService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityCustomerWrite, logg)).Post("/", controllers.CustomerCreate(customerService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityCustomerWrite, logg)).Patch("/{customerID}", controllers.CustomerUpdate(customerService, logg))
			})

			r.Route("/registers/{registerID}/session", func(r chi.Router) {
				r.Get("/", controllers.RegisterSession(registerService, logg))
				r.Delete("/", controllers.RegisterClear(registerService, logg))
				r.Post("/items", controllers.RegisterAddItem(registerService, logg))
				r.Patch("/items/{lineID}", controllers.RegisterUpdateItem(registerService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityDiscountLineApply, logg)).Put("/items/{lineID}/discount", controllers.RegisterSetItemDiscount(registerService, logg))
				r.Delete("/items/{lineID}/discount", controllers.RegisterClearItemDiscount(registerService, logg))
				r.Delete("/items/{lineID}", controllers.RegisterRemoveItem(registerService, logg))
				r.Put("/customer", controllers.RegisterSetCustomer(registerService, logg))
				r.Delete("/customer", controllers.RegisterClearCustomer(registerService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityDiscountOrderApply, logg)).Put("/discount", controllers.RegisterSetOrderDiscount(registerService, logg))
				r.Delete("/discount", controllers.RegisterClearOrderDiscount(registerService, logg))
				r.Put("/notes", controllers.RegisterSetNotes(registerService, logg))
				r.Post("/hold", controllers.RegisterHold(registerService, logg))
				r.Get("/held", controllers.RegisterHeldOrders(registerService, logg))
				r.Post("/held/{heldID}/restore", controllers.RegisterRestore(registerService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityHeldOrderDelete, logg)).Delete("/held/{heldID}", controllers.RegisterDeleteHeld(registerService, logg))
			})

			r.Post("/settlement/quote", controllers.SettlementQuote(logg))

			r.Route("/sales", func(r chi.Router) {
				r.With(middleware.RequireCapability(enums.CapabilitySaleCreate, logg)).Post("/", controllers.SaleCreate(salesService, logg))
				r.Get("/", controllers.SaleList(salesService, logg))
				r.Get("/{saleID}", controllers.SaleGet(salesService, logg))
				r.Get("/{saleID}/receipt", controllers.SaleReceipt(salesService, logg))
				r.With(middleware.RequireCapability(enums.CapabilitySaleVoid, logg)).Post("/{saleID}/void", controllers.SaleVoid(salesService, logg))
			})

			r.Route("/drawer", func(r chi.Router) {
				r.Get("/movements", controllers.DrawerMovements(ledgerService, logg))
				r.With(middleware.RequireCapability(enums.CapabilityDrawerManage, logg)).Post("/movements", controllers.DrawerRecord(ledgerService, logg))
			})

			r.With(middleware.RequireCapability(enums.CapabilityAuditRead, logg)).Get("/audit", controllers.AuditList(auditService, logg))

			r.Route("/store", func(r chi.Router) {
				r.Get("/", controllers.StoreGet(storeService, logg))
				r.With(middleware.RequireRole(enums.UserRoleAdmin, logg)).Patch("/", controllers.StoreUpdate(storeService, logg))
			})
		})
	})

	return r
}
