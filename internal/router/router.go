package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/carelink-go-api/internal/config"
	"github.com/noah-isme/carelink-go-api/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	RequestHandler  *handler.RequestHandler
	FeedbackHandler *handler.FeedbackHandler
	SeniorHandler   *handler.SeniorHandler
	StudentHandler  *handler.StudentHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.RequestHandler != nil {
		requests := api.Group("/requests", jwtMiddleware)
		if deps.FeedbackHandler != nil {
			deps.FeedbackHandler.Register(requests)
		}
		deps.RequestHandler.Register(requests)
	}

	if deps.SeniorHandler != nil {
		seniors := api.Group("/seniors", jwtMiddleware)
		deps.SeniorHandler.Register(seniors)
	}

	if deps.StudentHandler != nil {
		students := api.Group("/students", jwtMiddleware)
		deps.StudentHandler.Register(students)
	}
}
