package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"abcretail/internal/domain"
	applog "abcretail/internal/log"
)

// fail maps the error taxonomy onto HTTP statuses. Conflicts tell the
// caller to reload and retry; stock failures report the available amount.
func fail(c *fiber.Ctx, err error) error {
	var (
		notFound    *domain.NotFoundError
		noStock     *domain.InsufficientStockError
		conflict    *domain.ConcurrencyConflictError
		duplicate   *domain.DuplicateKeyError
		unsupported *domain.UnsupportedOperationError
		transport   *domain.TransportError
	)
	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &noStock):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":     fmt.Sprintf("insufficient stock, %d available", noStock.Available),
			"available": noStock.Available,
		})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "modified by another user, please retry",
		})
	case errors.As(err, &duplicate):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &unsupported):
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &transport):
		applog.Error(c, "storage.transport", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "storage unavailable, try again later"})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
}
