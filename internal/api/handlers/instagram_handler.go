package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	config "instapilot/configs"
	"instapilot/internal/repository"
	"instapilot/internal/service"
	"instapilot/internal/transfer"
)

type InstagramHandler struct {
	cfg config.Config
	s   service.AccountService
}

func NewInstagramHandler(cfg config.Config, s service.AccountService) *InstagramHandler {
	return &InstagramHandler{cfg: cfg, s: s}
}

func (h *InstagramHandler) RegisterCredentials(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.InstagramCredentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	err := h.s.RegisterCredentials(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrInstagramAccountExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Instagram credentials already exist for this user",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Instagram credentials saved successfully",
	})
}

func (h *InstagramHandler) GetCredentials(c *fiber.Ctx) error {
	userID := GetUserID(c)

	creds, err := h.s.GetCredentials(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrInstagramAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Instagram credentials not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get credentials",
		})
	}

	return c.Status(fiber.StatusOK).JSON(creds)
}

func (h *InstagramHandler) UpdateCredentials(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.InstagramCredentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	err := h.s.UpdateCredentials(c.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrInstagramAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Instagram credentials not found",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Instagram credentials updated successfully",
	})
}

func (h *InstagramHandler) RemoveCredentials(c *fiber.Ctx) error {
	userID := GetUserID(c)

	err := h.s.RemoveCredentials(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrInstagramAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Instagram credentials not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove credentials",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *InstagramHandler) Connect(c *fiber.Ctx) error {
	state := GetUserID(c).String()
	return c.Redirect(h.s.ConnectURL(state), fiber.StatusTemporaryRedirect)
}

func (h *InstagramHandler) ConnectCallback(c *fiber.Ctx) error {
	userID := GetUserID(c)
	code := c.Query("code")

	if err := h.s.ConnectCallback(c.Context(), userID, code); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}
