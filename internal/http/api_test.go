package http_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"abcretail/internal/domain"
	"abcretail/internal/events"
	"abcretail/internal/http/handlers"
	"abcretail/internal/services"
	"abcretail/internal/store"
)

func testApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.EnsureSchema(context.Background()))

	deps := handlers.NewDeps(st, &events.Capture{}, services.NewAuthService("", ""))

	app := fiber.New()
	api := app.Group("/api/v1")
	staff := handlers.RequireStaff(deps.Auth)
	api.Get("/customers/:id", deps.CustomerHandler.Get)
	api.Post("/customers", staff, deps.CustomerHandler.Create)
	api.Get("/products/:id/price", deps.ProductHandler.Price)
	api.Post("/products", staff, deps.ProductHandler.Create)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Post("/orders", staff, deps.OrderHandler.Create)
	api.Put("/orders/:id", staff, deps.OrderHandler.Edit)
	api.Post("/orders/:id/status", staff, deps.OrderHandler.UpdateStatus)
	return app, st
}

func seed(t *testing.T, st *store.Store, stock int) {
	t.Helper()
	ctx := context.Background()
	_, err := st.AddCustomer(ctx, domain.Customer{ID: "c1", Name: "Thandi", Surname: "Mokoena", Username: "thandi.m", Email: "thandi@example.com"})
	require.NoError(t, err)
	_, err = st.AddProduct(ctx, domain.Product{ID: "p1", ProductName: "Widget", Price: decimal.RequireFromString("5.00"), StockAvailable: stock})
	require.NoError(t, err)
}

func TestCreateOrderEndpoint(t *testing.T) {
	app, st := testApp(t)
	seed(t, st, 10)

	req := httptest.NewRequest("POST", "/api/v1/orders",
		strings.NewReader(`{"customerId":"c1","productId":"p1","quantity":3}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var order domain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	require.Equal(t, 3, order.Quantity)
	require.Equal(t, "thandi.m", order.Username)

	p, err := st.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, 7, p.StockAvailable)
}

func TestCreateOrderInsufficientStockIs422(t *testing.T) {
	app, st := testApp(t)
	seed(t, st, 2)

	req := httptest.NewRequest("POST", "/api/v1/orders",
		strings.NewReader(`{"customerId":"c1","productId":"p1","quantity":5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Error     string `json:"error"`
		Available int    `json:"available"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 2, body.Available)
	require.Contains(t, body.Error, "insufficient stock")
}

func TestCreateOrderUnknownCustomerIs404(t *testing.T) {
	app, st := testApp(t)
	seed(t, st, 10)
	require.NoError(t, st.DeleteCustomer(context.Background(), "c1"))

	req := httptest.NewRequest("POST", "/api/v1/orders",
		strings.NewReader(`{"customerId":"c1","productId":"p1","quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestStatusEndpointRejectsUnknownStatus(t *testing.T) {
	app, _ := testApp(t)

	req := httptest.NewRequest("POST", "/api/v1/orders/any/status",
		strings.NewReader(`{"status":"Teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProductPriceEndpoint(t *testing.T) {
	app, st := testApp(t)
	seed(t, st, 4)

	req := httptest.NewRequest("GET", "/api/v1/products/p1/price", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		ProductName string `json:"productName"`
		Stock       int    `json:"stock"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Widget", body.ProductName)
	require.Equal(t, 4, body.Stock)
}

func TestProductCreateRejectsNonPositivePrice(t *testing.T) {
	app, _ := testApp(t)

	req := httptest.NewRequest("POST", "/api/v1/products",
		strings.NewReader(`{"productName":"Free Thing","price":"0","stockAvailable":5}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
