package v1

import (
	"i4e-backend/internal/delivery/http/handler"
	"i4e-backend/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	CareerLibrary *handler.CareerLibraryHandler
	Transactions  *handler.TransactionHandler
	AuthMW        *middleware.AuthMiddleware
}

// Register mounts the v1 API. Only /auth is public.
func Register(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}

	if h.Auth != nil {
		h.Auth.RegisterRoutes(r.Group("/auth"))
	}

	if h.AuthMW == nil {
		return
	}
	protected := r.Group("", h.AuthMW.Middleware())

	RegisterUsers(protected.Group("/users"), h.Users)
	RegisterCareerLibrary(protected.Group("/career-library"), h.CareerLibrary)
	if h.Transactions != nil {
		h.Transactions.RegisterRoutes(protected.Group("/transactions"))
	}
}
