package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/courselab/activity-server-api/internal/config"
	"github.com/courselab/activity-server-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ActivityHandler    *handler.ActivityHandler
	InstructorHandler  *handler.InstructorHandler
	SubmissionHandler  *handler.SubmissionHandler
	DashboardHandler   *handler.DashboardHandler
	IdentityMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Routes needing a verified caller take the identity middleware, or a
	// no-op if none was provided.
	requireIdentity := deps.IdentityMiddleware
	if requireIdentity == nil {
		requireIdentity = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.DashboardHandler != nil {
		deps.DashboardHandler.Register(api, requireIdentity)
	}

	if deps.ActivityHandler != nil {
		activities := api.Group("/activities")
		deps.ActivityHandler.Register(activities, requireIdentity)
	}

	if deps.InstructorHandler != nil {
		instructors := api.Group("/instructors")
		deps.InstructorHandler.Register(instructors, requireIdentity)
	}

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api, requireIdentity)
	}
}
