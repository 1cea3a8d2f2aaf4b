package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"abcretail/internal/domain"
	"abcretail/internal/events"
	"abcretail/internal/services"
	"abcretail/internal/store"
)

func memStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.EnsureSchema(context.Background()))
	return st
}

func seedCustomer(t *testing.T, st store.Gateway, id string) domain.Customer {
	t.Helper()
	c, err := st.AddCustomer(context.Background(), domain.Customer{
		ID:       id,
		Name:     "Thandi",
		Surname:  "Mokoena",
		Username: "thandi.m",
		Email:    "thandi@example.com",
	})
	require.NoError(t, err)
	return c
}

func seedProduct(t *testing.T, st store.Gateway, id string, price string, stock int) domain.Product {
	t.Helper()
	p, err := st.AddProduct(context.Background(), domain.Product{
		ID:             id,
		ProductName:    "Product " + id,
		Price:          decimal.RequireFromString(price),
		StockAvailable: stock,
	})
	require.NoError(t, err)
	return p
}

func newEngine(t *testing.T) (*services.OrderService, *store.Store, *events.Capture) {
	t.Helper()
	st := memStore(t)
	cap := &events.Capture{}
	return services.NewOrderService(st, cap), st, cap
}

func TestCreate_DecrementsStockAndPublishes(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	order, err := svc.Create(ctx, services.CreateOrderInput{
		CustomerID: "c1",
		ProductID:  "p1",
		Quantity:   3,
		OrderDate:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotEmpty(t, order.ID)
	require.Equal(t, domain.StatusSubmitted, order.Status)
	require.True(t, order.TotalPrice.Equal(decimal.RequireFromString("15.00")),
		"total was %s", order.TotalPrice)
	require.Equal(t, "thandi.m", order.Username)
	require.Equal(t, time.UTC, order.OrderDate.Location())

	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 7, p.StockAvailable)

	created := cap.ByQueue(domain.QueueOrderNotifications)
	require.Len(t, created, 1)
	ev := created[0].Payload.(domain.OrderCreatedEvent)
	require.Equal(t, order.ID, ev.OrderID)
	require.Equal(t, "Thandi Mokoena", ev.CustomerName)
	require.Equal(t, 3, ev.Quantity)

	stock := cap.ByQueue(domain.QueueStockUpdates)
	require.Len(t, stock, 1)
	sev := stock[0].Payload.(domain.StockUpdatedEvent)
	require.Equal(t, 10, sev.PreviousStock)
	require.Equal(t, 7, sev.NewStockAvailable)
	require.Equal(t, domain.UpdateByOrderPlaced, sev.UpdateBy)
}

func TestCreate_InsufficientStock(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 2)

	_, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 3})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 2, stockErr.Available)

	// nothing committed, nothing published
	p, _ := st.GetProduct(ctx, "p1")
	require.Equal(t, 2, p.StockAvailable)
	require.Empty(t, cap.All())
	orders, err := st.ListOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreate_MissingReferences(t *testing.T) {
	svc, st, _ := newEngine(t)
	ctx := context.Background()
	seedProduct(t, st, "p1", "5.00", 10)

	_, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "nope", ProductID: "p1", Quantity: 1})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, domain.PartitionCustomer, nf.Kind)

	seedCustomer(t, st, "c1")
	_, err = svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "nope", Quantity: 1})
	require.ErrorAs(t, err, &nf)
	require.Equal(t, domain.PartitionProduct, nf.Kind)
}

func TestCreate_RejectsNonPositiveQuantity(t *testing.T) {
	svc, _, _ := newEngine(t)
	_, err := svc.Create(context.Background(), services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 0})
	require.Error(t, err)
}

// conflictGateway fails the next N product updates with a version conflict,
// simulating a concurrent writer between the read and the stock write.
type conflictGateway struct {
	store.Gateway
	remaining int
}

func (g *conflictGateway) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if g.remaining > 0 {
		g.remaining--
		return domain.Product{}, &domain.ConcurrencyConflictError{Kind: domain.PartitionProduct, Key: p.ID}
	}
	return g.Gateway.UpdateProduct(ctx, p)
}

func TestCreate_ConflictCompensatesOrder(t *testing.T) {
	st := memStore(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	cap := &events.Capture{}
	svc := services.NewOrderService(&conflictGateway{Gateway: st, remaining: 1}, cap)

	_, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 3})
	var conflict *domain.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)

	// the compensating delete removed the order; stock untouched
	orders, err := st.ListOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
	p, _ := st.GetProduct(ctx, "p1")
	require.Equal(t, 10, p.StockAvailable)
	require.Empty(t, cap.All())
}

func TestEdit_SameProductQuantityChange(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	cap.Reset()

	edited, err := svc.Edit(ctx, order.ID, services.EditOrderInput{Quantity: 5})
	require.NoError(t, err)
	require.Equal(t, 5, edited.Quantity)
	require.True(t, edited.TotalPrice.Equal(decimal.RequireFromString("25.00")))

	p, _ := st.GetProduct(ctx, "p1")
	require.Equal(t, 5, p.StockAvailable)

	stock := cap.ByQueue(domain.QueueStockUpdates)
	require.Len(t, stock, 1)
	sev := stock[0].Payload.(domain.StockUpdatedEvent)
	require.Equal(t, 7, sev.PreviousStock)
	require.Equal(t, 5, sev.NewStockAvailable)
	require.Equal(t, domain.UpdateByOrderUpdated, sev.UpdateBy)
}

func TestEdit_QuantityDecreaseRestoresStock(t *testing.T) {
	svc, st, _ := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 6})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, order.ID, services.EditOrderInput{Quantity: 2})
	require.NoError(t, err)

	p, _ := st.GetProduct(ctx, "p1")
	require.Equal(t, 8, p.StockAvailable) // 4 + (6-2)
}

func TestEdit_QuantityIncreaseBeyondStockFails(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 5)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 3})
	require.NoError(t, err)
	cap.Reset()

	_, err = svc.Edit(ctx, order.ID, services.EditOrderInput{Quantity: 6}) // needs 3 more, only 2 left
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, 2, stockErr.Available)

	// order unchanged
	got, err := st.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.Quantity)
	require.Empty(t, cap.All())
}

func TestEdit_ProductChangeReassignsStock(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "pa", "5.00", 10)
	seedProduct(t, st, "pb", "8.00", 20)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "pa", Quantity: 2})
	require.NoError(t, err) // product A now at 8
	cap.Reset()

	edited, err := svc.Edit(ctx, order.ID, services.EditOrderInput{ProductID: "pb", Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, "pb", edited.ProductID)
	require.Equal(t, "Product pb", edited.ProductName)
	require.True(t, edited.UnitPrice.Equal(decimal.RequireFromString("8.00")))
	require.True(t, edited.TotalPrice.Equal(decimal.RequireFromString("32.00")))

	pa, _ := st.GetProduct(ctx, "pa")
	pb, _ := st.GetProduct(ctx, "pb")
	require.Equal(t, 10, pa.StockAvailable) // 8 + 2 restored
	require.Equal(t, 16, pb.StockAvailable) // 20 - 4 deducted

	stock := cap.ByQueue(domain.QueueStockUpdates)
	require.Len(t, stock, 2)
	first := stock[0].Payload.(domain.StockUpdatedEvent)
	second := stock[1].Payload.(domain.StockUpdatedEvent)
	require.Equal(t, "pa", first.ProductID)
	require.Equal(t, 8, first.PreviousStock)
	require.Equal(t, 10, first.NewStockAvailable)
	require.Equal(t, "pb", second.ProductID)
	require.Equal(t, 20, second.PreviousStock)
	require.Equal(t, 16, second.NewStockAvailable)
}

func TestEdit_ProductChangeInsufficientStock(t *testing.T) {
	svc, st, _ := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "pa", "5.00", 10)
	seedProduct(t, st, "pb", "8.00", 1)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "pa", Quantity: 2})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, order.ID, services.EditOrderInput{ProductID: "pb", Quantity: 4})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// neither product touched
	pa, _ := st.GetProduct(ctx, "pa")
	pb, _ := st.GetProduct(ctx, "pb")
	require.Equal(t, 8, pa.StockAvailable)
	require.Equal(t, 1, pb.StockAvailable)
}

func TestEdit_ConflictUnwindsRestore(t *testing.T) {
	st := memStore(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "pa", "5.00", 10)
	seedProduct(t, st, "pb", "8.00", 20)

	cap := &events.Capture{}
	svc := services.NewOrderService(st, cap)
	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "pa", Quantity: 2})
	require.NoError(t, err)
	cap.Reset()

	// first UpdateProduct (restore of pa) succeeds, second (deduct of pb) conflicts
	gw := &conflictAfterN{Gateway: st, passFirst: 1}
	svc = services.NewOrderService(gw, cap)

	_, err = svc.Edit(ctx, order.ID, services.EditOrderInput{ProductID: "pb", Quantity: 4})
	var conflict *domain.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)

	// the restore of pa was unwound; pb untouched; order unchanged
	pa, _ := st.GetProduct(ctx, "pa")
	pb, _ := st.GetProduct(ctx, "pb")
	require.Equal(t, 8, pa.StockAvailable)
	require.Equal(t, 20, pb.StockAvailable)
	got, _ := st.GetOrder(ctx, order.ID)
	require.Equal(t, "pa", got.ProductID)
	require.Equal(t, 2, got.Quantity)
	require.Empty(t, cap.All())
}

// conflictAfterN lets passFirst product updates through, then conflicts once,
// then passes everything (so compensation writes succeed).
type conflictAfterN struct {
	store.Gateway
	passFirst int
	tripped   bool
}

func (g *conflictAfterN) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	if g.passFirst > 0 {
		g.passFirst--
		return g.Gateway.UpdateProduct(ctx, p)
	}
	if !g.tripped {
		g.tripped = true
		return domain.Product{}, &domain.ConcurrencyConflictError{Kind: domain.PartitionProduct, Key: p.ID}
	}
	return g.Gateway.UpdateProduct(ctx, p)
}

func TestDelete_RestoresStock(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 4})
	require.NoError(t, err)
	cap.Reset()

	require.NoError(t, svc.Delete(ctx, order.ID))

	p, _ := st.GetProduct(ctx, "p1")
	require.Equal(t, 10, p.StockAvailable)

	_, err = st.GetOrder(ctx, order.ID)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)

	stock := cap.ByQueue(domain.QueueStockUpdates)
	require.Len(t, stock, 1)
	sev := stock[0].Payload.(domain.StockUpdatedEvent)
	require.Equal(t, 6, sev.PreviousStock)
	require.Equal(t, 10, sev.NewStockAvailable)
	require.Equal(t, domain.UpdateByOrderDeleted, sev.UpdateBy)
}

func TestDelete_AbsentOrderIsIdempotent(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedProduct(t, st, "p1", "5.00", 10)

	require.NoError(t, svc.Delete(ctx, "never-existed"))
	p, _ := st.GetProduct(ctx, "p1")
	require.Equal(t, 10, p.StockAvailable)
	require.Empty(t, cap.All())
}

func TestDelete_VanishedProductStillDeletesOrder(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 4})
	require.NoError(t, err)
	require.NoError(t, st.DeleteProduct(ctx, "p1"))
	cap.Reset()

	require.NoError(t, svc.Delete(ctx, order.ID))

	_, err = st.GetOrder(ctx, order.ID)
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Empty(t, cap.ByQueue(domain.QueueStockUpdates))
}

func TestUpdateStatus_PublishesTransition(t *testing.T) {
	svc, st, cap := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	cap.Reset()

	updated, err := svc.UpdateStatus(ctx, order.ID, domain.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, domain.StatusShipped, updated.Status)

	// no inventory side effects
	p, _ := st.GetProduct(ctx, "p1")
	require.Equal(t, 9, p.StockAvailable)
	require.Empty(t, cap.ByQueue(domain.QueueStockUpdates))

	status := cap.ByQueue(domain.QueueStatusUpdates)
	require.Len(t, status, 1)
	ev := status[0].Payload.(domain.StatusUpdatedEvent)
	require.Equal(t, domain.StatusSubmitted, ev.PreviousStatus)
	require.Equal(t, domain.StatusShipped, ev.NewStatus)
	require.Equal(t, domain.UpdateBySystem, ev.UpdateBy)
}

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	svc, st, _ := newEngine(t)
	ctx := context.Background()
	seedCustomer(t, st, "c1")
	seedProduct(t, st, "p1", "5.00", 10)

	order, err := svc.Create(ctx, services.CreateOrderInput{CustomerID: "c1", ProductID: "p1", Quantity: 1})
	require.NoError(t, err)

	// Delivered straight back to Submitted: the engine does not constrain it
	_, err = svc.UpdateStatus(ctx, order.ID, domain.StatusDelivered)
	require.NoError(t, err)
	got, err := svc.UpdateStatus(ctx, order.ID, domain.StatusSubmitted)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSubmitted, got.Status)
}
