package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/atelier-boutique/storefront/internal/api/handler"
	"github.com/atelier-boutique/storefront/internal/api/middleware"
	"github.com/atelier-boutique/storefront/internal/core/ports"

	_ "github.com/atelier-boutique/storefront/docs"
)

// Dependencies is everything the HTTP layer needs. Services are built by
// the caller.
type Dependencies struct {
	Log          zerolog.Logger
	SecureCookie bool
	// Registerer receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registerer prometheus.Registerer

	Resolver      ports.ViewerResolver
	Auth          ports.AuthService
	Accounts      ports.AccountService
	Notifications ports.NotificationService
	Catalog       ports.CatalogService
	Inventory     ports.InventoryService
	Checkout      ports.CheckoutService
	Orders        ports.OrderService
	Analytics     ports.AnalyticsService
	Revalidation  ports.RevalidationService
	Mail          ports.MailService
	Dashboard     ports.DashboardService

	// Readiness is optional; without it only the liveness probe is served.
	Readiness *handler.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "storefront",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper:    isProbe,
	}))

	// --- Health probes and tooling (no session needed) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness)
	}
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Everything below is resolved once per request, then gated on the path.
	g := e.Group("", middleware.Session(deps.Resolver), middleware.Gate(deps.Log))

	authH := handler.NewAuthHandler(deps.Auth, deps.SecureCookie)
	accountH := handler.NewAccountHandler(deps.Accounts, deps.Orders)
	notificationH := handler.NewNotificationHandler(deps.Notifications)
	catalogH := handler.NewCatalogHandler(deps.Catalog, deps.Inventory)
	checkoutH := handler.NewCheckoutHandler(deps.Checkout)
	orderH := handler.NewOrderHandler(deps.Orders)
	analyticsH := handler.NewAnalyticsHandler(deps.Analytics)
	revalidateH := handler.NewRevalidateHandler(deps.Revalidation)
	mailH := handler.NewMailHandler(deps.Mail)
	dashboardH := handler.NewDashboardHandler(deps.Dashboard)

	// --- Auth area ---
	g.GET("/connexion", authH.LoginPage)
	g.POST("/connexion", authH.Login)
	g.GET("/inscription", authH.RegisterPage)
	g.POST("/inscription", authH.Register)
	g.POST("/api/auth/deconnexion", authH.Logout)

	// --- User area ---
	g.GET("/compte", accountH.Overview)
	g.GET("/compte/mes-adresses", accountH.Addresses)
	g.GET("/compte/commandes", accountH.Orders)

	account := g.Group("/api/compte", middleware.RequireAuthenticated())
	account.PATCH("/profil", accountH.UpdateProfile)
	account.POST("/role", accountH.SwitchRole)
	account.GET("/adresses", accountH.Addresses)
	account.POST("/adresses", accountH.CreateAddress)
	account.PUT("/adresses/:id", accountH.UpdateAddress)
	account.DELETE("/adresses/:id", accountH.DeleteAddress)

	// --- Admin area ---
	g.GET("/admin", dashboardH.Overview)
	g.GET("/admin/stocks", catalogH.Stock)
	g.GET("/admin/commandes", orderH.List)
	g.GET("/admin/analytics", analyticsH.Summary)

	admin := g.Group("/api/admin", middleware.RequireAdminMode())
	admin.PATCH("/produits/:id/stock", catalogH.SetStock)
	admin.POST("/coupons", checkoutH.CreateCoupon)
	admin.PATCH("/commandes/:id/status", orderH.UpdateStatus)

	notifications := g.Group("/api/notifications", middleware.RequireAdminMode())
	notifications.GET("", notificationH.List)
	notifications.PATCH("/read-all", notificationH.MarkAllRead)
	notifications.PATCH("/:id/read", notificationH.MarkRead)
	notifications.DELETE("/:id", notificationH.Delete)

	g.POST("/api/email/test", mailH.SendTest, middleware.RequireAdminMode())

	// --- Public ---
	g.GET("/api/produits", catalogH.List)
	g.GET("/api/produits/:slug", catalogH.Get)
	g.POST("/api/analytics", analyticsH.Track)
	g.POST("/api/checkout", checkoutH.Create, middleware.RequireUserMode())
	g.POST("/api/webhooks/stripe", checkoutH.Webhook)
	// Authorized by the shared secret or an admin-mode session.
	g.POST("/api/revalidate", revalidateH.Revalidate)

	return e
}

func isProbe(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health")
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper:      isProbe,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
