package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "abcretail/internal/log"
	"abcretail/internal/services"
)

// RequireStaff guards mutating back-office routes. With no credential
// configured the deployment runs open; that is logged at startup.
func RequireStaff(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !auth.Enabled() {
			return c.Next()
		}
		if auth.LoggedIn(c.Cookies(adminCookie)) {
			return c.Next()
		}
		applog.Security(c, "access.denied", map[string]any{"path": c.Path()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
}
