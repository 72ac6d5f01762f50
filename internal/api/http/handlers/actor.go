package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Actor returns the caller-supplied identity for mutating operations.
// Authentication is the caller's responsibility; the engine only records
// the name.
func Actor(c *fiber.Ctx) string {
	actor := strings.TrimSpace(c.Get("X-Actor"))
	if actor == "" {
		return "system"
	}
	return actor
}
