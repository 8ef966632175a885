package handler

import (
	"i4e-backend/internal/pkg/response"
	"i4e-backend/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type TransactionHandler struct {
	uc usecase.TransactionUsecase
}

func NewTransactionHandler(uc usecase.TransactionUsecase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

func (h *TransactionHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/", h.ListMine)
	r.Get("/user", h.ListForUser)
}

func (h *TransactionHandler) ListMine(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	return h.list(c, userID)
}

func (h *TransactionHandler) ListForUser(c fiber.Ctx) error {
	userID, err := parseInt64(c.Query("userId"))
	if err != nil {
		return err
	}
	return h.list(c, userID)
}

func (h *TransactionHandler) list(c fiber.Ctx, userID int64) error {
	items, err := h.uc.ListForUser(c.Context(), userID, c.Query("status"))
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, items)
}
