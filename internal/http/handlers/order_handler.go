package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"abcretail/internal/domain"
	applog "abcretail/internal/log"
	"abcretail/internal/services"
	"abcretail/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type orderWriteRequest struct {
	CustomerID string    `json:"customerId"`
	ProductID  string    `json:"productId"`
	Quantity   int       `json:"quantity"`
	Status     string    `json:"status"`
	OrderDate  time.Time `json:"orderDate"`
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	order, err := h.Orders.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req orderWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	status, err := parseStatus(req.Status, domain.StatusSubmitted)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := h.Orders.Create(c.Context(), services.CreateOrderInput{
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		Status:     status,
		OrderDate:  req.OrderDate,
	})
	if err != nil {
		return fail(c, err)
	}

	applog.Audit(c, "order.create", map[string]any{
		"order_id": order.ID,
		"product":  order.ProductID,
		"quantity": order.Quantity,
	})
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (h *OrderHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req orderWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	status, err := parseStatus(req.Status, "")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := h.Orders.Edit(c.Context(), id, services.EditOrderInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Status:    status,
		OrderDate: req.OrderDate,
	})
	if err != nil {
		return fail(c, err)
	}

	applog.Audit(c, "order.edit", map[string]any{
		"order_id": order.ID,
		"product":  order.ProductID,
		"quantity": order.Quantity,
	})
	return c.JSON(order)
}

func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	if err := h.Orders.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.delete", map[string]any{"order_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	status, valid := domain.ParseStatus(req.Status)
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
	}

	order, err := h.Orders.UpdateStatus(c.Context(), id, status)
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.status", map[string]any{"order_id": id, "status": req.Status})
	return c.JSON(order)
}

// Statuses exposes the fixed enum for the order form.
func (h *OrderHandler) Statuses(c *fiber.Ctx) error {
	return c.JSON(domain.Statuses())
}

func parseStatus(raw string, fallback domain.Status) (domain.Status, error) {
	if raw == "" {
		return fallback, nil
	}
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return "", fiber.NewError(fiber.StatusBadRequest, "unknown status")
	}
	return status, nil
}
