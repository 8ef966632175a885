package routes

import (
	"i4e-backend/internal/delivery/http/handler"
	"i4e-backend/internal/delivery/http/middleware"
	v1 "i4e-backend/internal/delivery/http/routes/v1"
	"i4e-backend/internal/ws"

	"github.com/gofiber/fiber/v3"
)

// Registry holds every handler the server exposes.
type Registry struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	CareerLibrary *handler.CareerLibraryHandler
	Transactions  *handler.TransactionHandler
	IngestWS      *ws.Handler
	AuthMW        *middleware.AuthMiddleware
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil || r == nil {
		return
	}

	r.registerHealth(app)
	r.registerWS(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerWS(app *fiber.App) {
	if r.IngestWS != nil {
		app.Get("/ws/ingest", r.IngestWS.HandleIngestWS)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), v1.Handlers{
		Auth:          r.Auth,
		Users:         r.Users,
		CareerLibrary: r.CareerLibrary,
		Transactions:  r.Transactions,
		AuthMW:        r.AuthMW,
	})
}
