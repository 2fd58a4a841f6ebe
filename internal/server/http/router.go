// Package http exposes taskkeeper over JSON/HTTP using Fiber.
package http

import (
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// NewApp builds a Fiber app with the JSON error handler and request
// logging installed.
func NewApp(log logging.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})
	app.Use(RequestLogger(log))
	return app
}

// Register wires all HTTP routes onto the app.
func Register(app *fiber.App, verifier Authenticator, authH *AuthHandler, todos *TodoHandler) {
	app.Get("/health", Health)

	a := app.Group("/auth")
	a.Post("/register", authH.Register)
	a.Post("/login", authH.Login)
	a.Post("/refresh", authH.Refresh)

	guard := RequireIdentity(verifier)

	app.Get("/me", guard, authH.Me)

	t := app.Group("/todos", guard)
	t.Post("/", todos.Create)
	t.Get("/", todos.List)
	t.Get("/:id", todos.Get)
	t.Put("/:id", todos.Update)
	t.Delete("/:id", todos.Delete)
	t.Post("/:id/attachment", todos.UploadURL)
	t.Get("/:id/attachment", todos.DownloadURL)
}
