package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/quizmaster-go-api/internal/config"
	"github.com/noah-isme/quizmaster-go-api/internal/handler"
	"github.com/noah-isme/quizmaster-go-api/internal/middleware"
	"github.com/noah-isme/quizmaster-go-api/internal/models"
	"github.com/noah-isme/quizmaster-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	CatalogHandler   *handler.CatalogHandler
	QuizHandler      *handler.QuizHandler
	AttemptHandler   *handler.AttemptHandler
	DashboardHandler *handler.DashboardHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Auth endpoints are public but rate limited to slow credential stuffing.
	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	// Student surface: catalog browsing, open quizzes, attempts, dashboard.
	student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.RegisterRead(student)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.RegisterStudent(student)
	}
	if deps.AttemptHandler != nil {
		deps.AttemptHandler.RegisterStudent(student)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterStudent(student)
	}

	// Admin surface: full catalog and quiz management plus the reporting dashboard.
	admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
	if deps.CatalogHandler != nil {
		deps.CatalogHandler.RegisterAdmin(admin)
	}
	if deps.QuizHandler != nil {
		deps.QuizHandler.RegisterAdmin(admin)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterAdmin(admin)
	}

	// Attempt review is readable by the owning student or any admin.
	if deps.AttemptHandler != nil {
		shared := api.Group("/", jwtMiddleware, middleware.RequireRole(models.RoleStudent, models.RoleAdmin))
		deps.AttemptHandler.RegisterShared(shared)
	}
}
