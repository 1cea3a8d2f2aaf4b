package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "abcretail/internal/log"
	"abcretail/internal/services"
)

const adminCookie = "admin_sid"

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	sid, err := h.Auth.Login(req.Email, req.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     adminCookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false, // enable true behind TLS
	})
	applog.Audit(c, "auth.login", nil)
	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sid := c.Cookies(adminCookie); sid != "" {
		h.Auth.Logout(sid)
	}
	c.ClearCookie(adminCookie)
	return c.JSON(fiber.Map{"ok": true})
}
