package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	applog "abcretail/internal/log"
	"abcretail/internal/services"
	"abcretail/internal/validate"
)

type ProductHandler struct {
	Products *services.ProductService
}

type productWriteRequest struct {
	ProductName    string          `json:"productName"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	StockAvailable int             `json:"stockAvailable"`
	ImageURL       string          `json:"imageUrl"`
}

func (r productWriteRequest) input() services.ProductInput {
	return services.ProductInput{
		ProductName:    r.ProductName,
		Description:    r.Description,
		Price:          r.Price,
		StockAvailable: r.StockAvailable,
		ImageURL:       r.ImageURL,
	}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Products.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	product, err := h.Products.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// Price backs the order form: current price, stock and name for a product.
func (h *ProductHandler) Price(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	product, err := h.Products.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"productId":   product.ID,
		"productName": product.ProductName,
		"price":       product.Price,
		"stock":       product.StockAvailable,
	})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	product, err := h.Products.Create(c.Context(), req.input())
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": product.ID})
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	var req productWriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	product, err := h.Products.Edit(c.Context(), id, req.input())
	if err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.edit", map[string]any{"product_id": id})
	return c.JSON(product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}
	if err := h.Products.Delete(c.Context(), id); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
