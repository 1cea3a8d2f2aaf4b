package store

import (
	"context"

	"abcretail/internal/domain"
)

// Gateway is the storage contract the engine and handlers depend on. Two
// production variants exist: the direct sqlite backend and the HTTP relay
// backend. Callers must treat them as interchangeable.
//
// Update methods perform a compare-and-swap on the entity's Version field:
// the stored version must equal the one supplied or the update fails with
// a ConcurrencyConflictError. On success the returned entity carries the
// new version tag.
type Gateway interface {
	// EnsureSchema provisions the backing tables. Backends that do not own
	// their schema fail with UnsupportedOperationError.
	EnsureSchema(ctx context.Context) error

	GetCustomer(ctx context.Context, id string) (domain.Customer, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	AddCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
	UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	AddProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	AddOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}
