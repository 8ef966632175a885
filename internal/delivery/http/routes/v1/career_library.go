package v1

import (
	"i4e-backend/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterCareerLibrary(r fiber.Router, h *handler.CareerLibraryHandler) {
	if r == nil {
		return
	}
	if h == nil {
		return
	}

	h.RegisterRoutes(r)
}
