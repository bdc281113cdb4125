package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"instapilot/internal/repository"
	"instapilot/internal/service"
	"instapilot/internal/transfer"
)

// ContextHandler serves one of the per-user context stores; main registers
// it twice, once for the post context and once for the wiki context.
type ContextHandler struct {
	s service.ContextService
}

func NewContextHandler(s service.ContextService) *ContextHandler {
	return &ContextHandler{s: s}
}

func (h *ContextHandler) Get(c *fiber.Ctx) error {
	userID := GetUserID(c)

	uc, err := h.s.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrContextNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Context not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get context",
		})
	}

	return c.Status(fiber.StatusOK).JSON(uc)
}

func (h *ContextHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ContextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	err := h.s.Create(c.Context(), userID, req.Content)
	if err != nil {
		if errors.Is(err, repository.ErrContextExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Context already exists",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusCreated)
}

func (h *ContextHandler) Update(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.ContextRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	err := h.s.Update(c.Context(), userID, req.Content)
	if err != nil {
		if errors.Is(err, repository.ErrContextNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Context not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *ContextHandler) Remove(c *fiber.Ctx) error {
	userID := GetUserID(c)

	err := h.s.Remove(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrContextNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Context not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove context",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
