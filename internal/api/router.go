package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/mysteremeal/recipe-api/docs"
	"github.com/mysteremeal/recipe-api/internal/api/handler"
	"github.com/mysteremeal/recipe-api/internal/api/middleware"
	"github.com/mysteremeal/recipe-api/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Auth    ports.AuthService
	Gate    ports.AccessGate
	Tokens  ports.TokenIssuer
	Users   ports.UserService
	Recipes ports.RecipeService

	// Limiter throttles signup and login. Nil disables throttling.
	Limiter middleware.AttemptLimiter

	// TrustProxy takes the client IP from X-Forwarded-For when the request
	// comes from a private or loopback address. Otherwise the peer address
	// is used and forwarding headers are ignored.
	TrustProxy bool

	// Health lists the dependencies checked by /health/ready.
	Health  map[string]handler.Pinger
	Version string
	Logger  zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.IPExtractor = echo.ExtractIPDirect()
	if deps.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	// HTTP metrics go to a per-router registry so several routers can coexist
	// in one process; /metrics also serves the default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "recipes_http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	authMW := middleware.Auth(deps.Tokens, deps.Gate)
	adminMW := middleware.RequireAdmin(deps.Gate)

	// --- Service endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.Version, deps.Health)
	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/api-docs/*", echoSwagger.WrapHandler)

	// --- Accounts ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)

	users := e.Group("/api/users")
	var throttle []echo.MiddlewareFunc
	if deps.Limiter != nil {
		throttle = append(throttle, middleware.Throttle(deps.Limiter, deps.Logger))
	}
	users.POST("/signup", authHandler.Signup, throttle...)
	users.POST("/login", authHandler.Login, throttle...)
	users.GET("/profile", userHandler.Profile, authMW)

	// --- Recipes ---
	recipeHandler := handler.NewRecipeHandler(deps.Recipes)
	recipes := e.Group("/api/recipes")
	recipes.GET("", recipeHandler.List)
	recipes.GET("/random", recipeHandler.Random)
	recipes.GET("/:id", recipeHandler.Get)
	recipes.POST("", recipeHandler.Create, authMW)
	recipes.PUT("/:id", recipeHandler.Update, authMW)
	recipes.DELETE("/:id", recipeHandler.Delete, authMW)

	// --- Admin ---
	adminHandler := handler.NewAdminHandler(deps.Users)
	admin := e.Group("/api/admin", authMW, adminMW)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/lock", adminHandler.Lock)
	admin.PUT("/users/:id/unlock", adminHandler.Unlock)
	admin.PUT("/users/:id/admin", adminHandler.SetAdmin)
	admin.GET("/users/:id/events", adminHandler.Events)

	return e
}
