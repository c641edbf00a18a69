package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/places/api/http/handlers"
)

// Register wires all HTTP routes onto given Fiber app. Read-only place
// routes are public; every mutating place route goes through authMW.
func Register(app *fiber.App, users *handlers.UserHandler, places *handlers.PlaceHandler, health *handlers.HealthHandler, authMW fiber.Handler) {
	api := app.Group("/api")

	// Health and readiness endpoints for probes/monitoring
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	u := api.Group("/users")
	u.Get("/", users.List)
	u.Post("/signup", users.Signup)
	u.Post("/login", users.Login)

	p := api.Group("/places")
	// /user/:id must be registered before /:id
	p.Get("/user/:id", places.ListByUser)
	p.Get("/:id", places.GetByID)
	p.Post("/", authMW, places.Create)
	p.Patch("/:id", authMW, places.Update)
	p.Delete("/:id", authMW, places.Delete)
}
