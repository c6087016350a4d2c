package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/suivipro/platform/docs"
	"github.com/suivipro/platform/internal/api/handler"
	"github.com/suivipro/platform/internal/api/middleware"
	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
	httpserver "github.com/suivipro/platform/internal/infrastructure/http"
	"github.com/suivipro/platform/internal/infrastructure/http/handlers"
)

// ServiceName is reported by the liveness probe.
const ServiceName = "Authentication Service"

// Deps carries everything the auth service router needs.
type Deps struct {
	Auth     ports.AuthService
	Admin    ports.AdminService
	Verifier ports.TokenVerifier
	// Readiness holds one check per configured dependency.
	Readiness   map[string]handlers.Check
	CORSOrigins []string
	Log         zerolog.Logger
	Registerer  prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := httpserver.NewServer(httpserver.Options{
		Subsystem:    "auth_service",
		CORSOrigins:  d.CORSOrigins,
		Log:          d.Log,
		ErrorHandler: NewHTTPErrorHandler(d.Log),
		Registerer:   d.Registerer,
	})
	e.Validator = handler.NewValidator()

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	passwordHandler := handler.NewPasswordHandler(d.Auth)
	adminHandler := handler.NewAdminHandler(d.Admin)
	requireAuth := middleware.Auth(d.Verifier)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.GET("/profile", authHandler.Profile, requireAuth)
	auth.GET("/verify", authHandler.Verify, requireAuth)

	// --- Password routes ---
	api.POST("/password/change-password", passwordHandler.Change, requireAuth)

	// --- Admin routes ---
	admin := api.Group("/admin", requireAuth, middleware.RequireRoles(domain.RoleAdmin))
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users", adminHandler.ListUsers)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.PUT("/users/:id/roles", adminHandler.UpdateUserRoles)
	admin.GET("/roles", adminHandler.ListRoles)
	admin.PUT("/roles/:id/permissions", adminHandler.UpdateRolePermissions)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler(ServiceName)
	readinessHandler := handlers.NewReadinessHandler(d.Readiness, d.Log)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
