package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/salonkit/leadgate/docs"
	"github.com/salonkit/leadgate/internal/api/handler"
	"github.com/salonkit/leadgate/internal/api/middleware"
	"github.com/salonkit/leadgate/internal/core/domain"
	"github.com/salonkit/leadgate/internal/core/ports"
	"github.com/salonkit/leadgate/internal/core/service"
)

// RouterDeps carries everything the HTTP layer needs. Forwarder may be nil;
// proxy routes are then not registered.
type RouterDeps struct {
	Leads         ports.LeadService
	Auth          ports.AuthService
	Resolver      service.TenantResolver
	Catalog       []domain.Tenant
	Forwarder     ports.Forwarder
	ProxyPaths    []string
	HealthChecks  map[string]handler.HealthCheck
	SecureCookies bool
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	// Widgets embed on arbitrary customer sites, so CORS is wide open.
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderContentType,
			echo.HeaderAuthorization,
			"X-Api-Key",
			"X-Admin-Key",
			"X-Tenant",
		},
		MaxAge: 86400,
	}))
	e.Use(echoprometheus.NewMiddleware("leadgate"))

	// --- Handlers ---
	actionHandler := handler.NewActionHandler(deps.Leads, deps.Auth, deps.Resolver, deps.Catalog, deps.Logger)
	adminHandler := handler.NewAdminHandler(deps.Auth, deps.SecureCookies, deps.Logger)
	formHandler := handler.NewLeadFormHandler(deps.Leads, deps.Resolver, deps.Logger)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	// --- Action dispatcher ---
	e.GET("/api", actionHandler.Handle)
	e.POST("/api", actionHandler.Handle)

	// --- Admin session ---
	e.POST("/admin/login", adminHandler.Login)
	e.GET("/admin/logout", adminHandler.Logout)

	// --- Public lead form ---
	e.POST("/form/lead", formHandler.Submit)
	e.GET("/form/lead", formHandler.Probe)

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Live)
	e.GET("/health/ready", healthHandler.Ready)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Upstream proxy (optional) ---
	if deps.Forwarder != nil {
		proxyHandler := handler.NewProxyHandler(deps.Forwarder, deps.Resolver, deps.Logger)
		requireAPI := middleware.RequireTier(deps.Auth, domain.TierAPI)
		for _, prefix := range deps.ProxyPaths {
			g := e.Group(prefix, requireAPI)
			g.Any("", proxyHandler.Forward)
			g.Any("/*", proxyHandler.Forward)
		}
	}

	return e
}
