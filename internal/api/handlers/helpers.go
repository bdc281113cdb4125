package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func GetUserID(c *fiber.Ctx) uuid.UUID {
	userID, _ := uuid.Parse(c.Locals("user_id").(string))
	return userID
}
