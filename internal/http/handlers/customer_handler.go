package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "abcretail/internal/log"
	"abcretail/internal/services"
	"abcretail/internal/validate"
)

type CustomerHandler struct {
	Customers *services.CustomerService
}

type customerWriteRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (r customerWriteRequest) input() services.CustomerInput {
	return services.CustomerInput{
		Name:     r.Name,
		Surname:  r.Surname,
		Username: r.Username,
		Email:    r.Email,
	}
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	customers, err := h.Customers.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(customers)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid customer id"})
	}
	customer, err := h.Customers.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req customerWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	customer, err := h.Customers.Create(c.Context(), req.input())
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "customer.create", map[string]any{"customer_id": customer.ID})
	return c.Status(fiber.StatusCreated).JSON(customer)
}

func (h *CustomerHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid customer id"})
	}
	var req customerWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	customer, err := h.Customers.Edit(c.Context(), id, req.input())
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "customer.edit", map[string]any{"customer_id": id})
	return c.JSON(customer)
}

func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid customer id"})
	}
	if err := h.Customers.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "customer.delete", map[string]any{"customer_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
