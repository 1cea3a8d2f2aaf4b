package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"abcretail/internal/domain"
	"abcretail/internal/events"
	applog "abcretail/internal/log"
	"abcretail/internal/store"
)

// OrderService is the order reconciliation engine. Every stock mutation in
// the system flows through it; conflict detection is optimistic and pushed
// down to the gateway's version check. The engine never retries — a version
// mismatch aborts the operation and the caller decides whether to reload
// and resubmit.
type OrderService struct {
	Store  store.Gateway
	Events events.Publisher
}

func NewOrderService(gw store.Gateway, pub events.Publisher) *OrderService {
	return &OrderService{Store: gw, Events: pub}
}

type CreateOrderInput struct {
	CustomerID string
	ProductID  string
	Quantity   int
	Status     domain.Status
	OrderDate  time.Time
}

type EditOrderInput struct {
	ProductID string
	Quantity  int
	Status    domain.Status
	OrderDate time.Time
}

var errQuantity = errors.New("quantity must be a positive integer")

// Create places a new order: validate customer/product, snapshot fields,
// persist the order, then decrement stock against the version tag read up
// front. The order is written first; if the stock decrement fails the order
// is compensated away so no order survives without its decrement.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if in.Quantity < 1 {
		return domain.Order{}, errQuantity
	}

	customer, err := s.Store.GetCustomer(ctx, in.CustomerID)
	if err != nil {
		return domain.Order{}, err
	}
	product, err := s.Store.GetProduct(ctx, in.ProductID)
	if err != nil {
		return domain.Order{}, err
	}
	if product.StockAvailable < in.Quantity {
		return domain.Order{}, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.ProductName,
			Requested:   in.Quantity,
			Available:   product.StockAvailable,
		}
	}

	status := in.Status
	if status == "" {
		status = domain.StatusSubmitted
	}

	order := domain.Order{
		ID:          uuid.NewString(),
		CustomerID:  customer.ID,
		Username:    customer.Username,
		ProductID:   product.ID,
		ProductName: product.ProductName,
		Quantity:    in.Quantity,
		UnitPrice:   product.Price,
		TotalPrice:  domain.Total(product.Price, in.Quantity),
		OrderDate:   domain.UTC(in.OrderDate),
		Status:      status,
	}

	order, err = s.Store.AddOrder(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	prevStock := product.StockAvailable
	product.StockAvailable -= in.Quantity
	if _, err = s.Store.UpdateProduct(ctx, product); err != nil {
		// Compensating delete: the order must not reference a stock
		// decrement that never committed.
		if derr := s.Store.DeleteOrder(ctx, order.ID); derr != nil {
			applog.Warn(nil, "order.create.integrity", derr, map[string]any{
				"order_id":   order.ID,
				"product_id": product.ID,
			})
		}
		return domain.Order{}, err
	}

	s.publish(ctx, domain.QueueOrderNotifications, domain.OrderCreatedEvent{
		OrderID:      order.ID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name + " " + customer.Surname,
		ProductName:  product.ProductName,
		Quantity:     order.Quantity,
		TotalPrice:   order.TotalPrice,
		OrderDate:    order.OrderDate,
		Status:       order.Status,
	})
	s.publish(ctx, domain.QueueStockUpdates, domain.StockUpdatedEvent{
		ProductID:         product.ID,
		ProductName:       product.ProductName,
		PreviousStock:     prevStock,
		NewStockAvailable: prevStock - in.Quantity,
		UpdateBy:          domain.UpdateByOrderPlaced,
		UpdateDate:        time.Now().UTC(),
	})
	return order, nil
}

// Edit re-runs stock reconciliation for an existing order. All three records
// (order, original product, selected product) are re-read with fresh version
// tags; a conflict on any of them aborts the whole edit.
func (s *OrderService) Edit(ctx context.Context, orderID string, in EditOrderInput) (domain.Order, error) {
	if in.Quantity < 1 {
		return domain.Order{}, errQuantity
	}

	order, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	original, err := s.Store.GetProduct(ctx, order.ProductID)
	if err != nil {
		return domain.Order{}, err
	}

	if in.ProductID == "" {
		in.ProductID = order.ProductID
	}
	productChanged := in.ProductID != order.ProductID

	selected := original
	if productChanged {
		if selected, err = s.Store.GetProduct(ctx, in.ProductID); err != nil {
			return domain.Order{}, err
		}
	}

	var stockEvents []domain.StockUpdatedEvent
	if productChanged {
		stockEvents, err = s.reassignStock(ctx, &order, original, selected, in)
	} else {
		stockEvents, err = s.adjustQuantity(ctx, &order, selected, in)
	}
	if err != nil {
		return domain.Order{}, err
	}

	for _, ev := range stockEvents {
		s.publish(ctx, domain.QueueStockUpdates, ev)
	}
	return order, nil
}

// adjustQuantity handles the same-product edit: apply the signed quantity
// delta to the product, then persist the updated order.
func (s *OrderService) adjustQuantity(ctx context.Context, order *domain.Order, product domain.Product, in EditOrderInput) ([]domain.StockUpdatedEvent, error) {
	delta := order.Quantity - in.Quantity
	if delta < 0 && product.StockAvailable < -delta {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.ProductName,
			Requested:   in.Quantity,
			Available:   product.StockAvailable,
		}
	}

	prev := product.StockAvailable
	product.StockAvailable += delta
	if _, err := s.Store.UpdateProduct(ctx, product); err != nil {
		return nil, err
	}

	if err := s.persistOrderEdit(ctx, order, product, in); err != nil {
		s.compensateStock(ctx, product.ID, -delta, "order.edit")
		return nil, err
	}

	return []domain.StockUpdatedEvent{{
		ProductID:         product.ID,
		ProductName:       product.ProductName,
		PreviousStock:     prev,
		NewStockAvailable: prev + delta,
		UpdateBy:          domain.UpdateByOrderUpdated,
		UpdateDate:        time.Now().UTC(),
	}}, nil
}

// reassignStock handles the product-change edit: give the prior quantity
// back to the original product and take the new quantity from the selected
// one. A failure part-way is unwound best-effort before reporting.
func (s *OrderService) reassignStock(ctx context.Context, order *domain.Order, original, selected domain.Product, in EditOrderInput) ([]domain.StockUpdatedEvent, error) {
	if selected.StockAvailable < in.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductID:   selected.ID,
			ProductName: selected.ProductName,
			Requested:   in.Quantity,
			Available:   selected.StockAvailable,
		}
	}

	origPrev := original.StockAvailable
	original.StockAvailable += order.Quantity
	if _, err := s.Store.UpdateProduct(ctx, original); err != nil {
		return nil, err
	}

	selPrev := selected.StockAvailable
	selected.StockAvailable -= in.Quantity
	if _, err := s.Store.UpdateProduct(ctx, selected); err != nil {
		s.compensateStock(ctx, original.ID, -order.Quantity, "order.edit")
		return nil, err
	}

	priorQty := order.Quantity
	if err := s.persistOrderEdit(ctx, order, selected, in); err != nil {
		s.compensateStock(ctx, original.ID, -priorQty, "order.edit")
		s.compensateStock(ctx, selected.ID, in.Quantity, "order.edit")
		return nil, err
	}

	return []domain.StockUpdatedEvent{
		{
			ProductID:         original.ID,
			ProductName:       original.ProductName,
			PreviousStock:     origPrev,
			NewStockAvailable: origPrev + priorQty,
			UpdateBy:          domain.UpdateByOrderUpdated,
			UpdateDate:        time.Now().UTC(),
		},
		{
			ProductID:         selected.ID,
			ProductName:       selected.ProductName,
			PreviousStock:     selPrev,
			NewStockAvailable: selPrev - in.Quantity,
			UpdateBy:          domain.UpdateByOrderUpdated,
			UpdateDate:        time.Now().UTC(),
		},
	}, nil
}

// persistOrderEdit refreshes the order's snapshot fields from the product it
// now references and writes it back under its version tag.
func (s *OrderService) persistOrderEdit(ctx context.Context, order *domain.Order, product domain.Product, in EditOrderInput) error {
	order.ProductID = product.ID
	order.ProductName = product.ProductName
	order.Quantity = in.Quantity
	order.UnitPrice = product.Price
	order.TotalPrice = domain.Total(product.Price, in.Quantity)
	if in.Status != "" {
		order.Status = in.Status
	}
	if !in.OrderDate.IsZero() {
		order.OrderDate = in.OrderDate.UTC()
	}
	updated, err := s.Store.UpdateOrder(ctx, *order)
	if err != nil {
		return err
	}
	*order = updated
	return nil
}

// Delete removes an order and gives its quantity back to the product.
// Deleting an absent order is idempotent success. A vanished product means
// the inventory is unrecoverable; the delete still proceeds.
func (s *OrderService) Delete(ctx context.Context, orderID string) error {
	order, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil
		}
		return err
	}

	product, err := s.Store.GetProduct(ctx, order.ProductID)
	switch {
	case err == nil:
		prev := product.StockAvailable
		product.StockAvailable += order.Quantity
		if _, err := s.Store.UpdateProduct(ctx, product); err != nil {
			return err
		}
		s.publish(ctx, domain.QueueStockUpdates, domain.StockUpdatedEvent{
			ProductID:         product.ID,
			ProductName:       product.ProductName,
			PreviousStock:     prev,
			NewStockAvailable: prev + order.Quantity,
			UpdateBy:          domain.UpdateByOrderDeleted,
			UpdateDate:        time.Now().UTC(),
		})
	default:
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) {
			return err
		}
		applog.Warn(nil, "order.delete.no_product", nil, map[string]any{
			"order_id":   orderID,
			"product_id": order.ProductID,
		})
	}

	return s.Store.DeleteOrder(ctx, orderID)
}

// UpdateStatus overwrites the order status under its version tag. No
// inventory side effects; the engine does not constrain transitions.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, newStatus domain.Status) (domain.Order, error) {
	order, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	previous := order.Status
	order.Status = newStatus
	order, err = s.Store.UpdateOrder(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}

	s.publish(ctx, domain.QueueStatusUpdates, domain.StatusUpdatedEvent{
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		CustomerName:   order.Username,
		ProductName:    order.ProductName,
		PreviousStatus: previous,
		NewStatus:      newStatus,
		UpdateDate:     time.Now().UTC(),
		UpdateBy:       domain.UpdateBySystem,
	})
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return s.Store.GetOrder(ctx, orderID)
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.Store.ListOrders(ctx)
}

// compensateStock unwinds an already-committed stock write after a later
// step failed. It re-reads the product for a fresh version tag. Failure here
// is a data-integrity gap and is logged, never swallowed silently.
func (s *OrderService) compensateStock(ctx context.Context, productID string, delta int, op string) {
	product, err := s.Store.GetProduct(ctx, productID)
	if err == nil && product.StockAvailable+delta >= 0 {
		product.StockAvailable += delta
		_, err = s.Store.UpdateProduct(ctx, product)
	}
	if err != nil {
		applog.Warn(nil, op+".integrity", err, map[string]any{
			"product_id": productID,
			"delta":      delta,
		})
	}
}

func (s *OrderService) publish(ctx context.Context, queue string, payload any) {
	if err := s.Events.Publish(ctx, queue, payload); err != nil {
		applog.Warn(nil, "event.publish.fail", err, map[string]any{"queue": queue})
	}
}
