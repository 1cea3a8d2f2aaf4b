package handlers

import (
	"abcretail/internal/events"
	"abcretail/internal/services"
	"abcretail/internal/store"
)

type Deps struct {
	CustomerHandler *CustomerHandler
	ProductHandler  *ProductHandler
	OrderHandler    *OrderHandler
	AuthHandler     *AuthHandler
	Auth            *services.AuthService
}

func NewDeps(gw store.Gateway, pub events.Publisher, auth *services.AuthService) *Deps {
	customerSvc := services.NewCustomerService(gw)
	productSvc := services.NewProductService(gw)
	orderSvc := services.NewOrderService(gw, pub)

	return &Deps{
		CustomerHandler: &CustomerHandler{Customers: customerSvc},
		ProductHandler:  &ProductHandler{Products: productSvc},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
		AuthHandler:     &AuthHandler{Auth: auth},
		Auth:            auth,
	}
}
