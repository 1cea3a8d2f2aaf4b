package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Queues consumed by downstream processors. Delivery is at-least-once and
// unordered; payloads are self-describing JSON.
const (
	QueueOrderNotifications = "order-notifications"
	QueueStockUpdates       = "stock-updates"
	QueueStatusUpdates      = "order-status-updates"
)

// Reasons carried in StockUpdatedEvent.UpdateBy.
const (
	UpdateByOrderPlaced  = "OrderPlaced"
	UpdateByOrderUpdated = "OrderUpdated"
	UpdateByOrderDeleted = "OrderDeleted"
	UpdateBySystem       = "System"
)

type OrderCreatedEvent struct {
	OrderID      string          `json:"orderId"`
	CustomerID   string          `json:"customerId"`
	CustomerName string          `json:"customerName"`
	ProductName  string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	OrderDate    time.Time       `json:"orderDate"`
	Status       Status          `json:"status"`
}

type StockUpdatedEvent struct {
	ProductID         string    `json:"productId"`
	ProductName       string    `json:"productName"`
	PreviousStock     int       `json:"previousStock"`
	NewStockAvailable int       `json:"newStockAvailable"`
	UpdateBy          string    `json:"updateBy"`
	UpdateDate        time.Time `json:"updateDate"`
}

type StatusUpdatedEvent struct {
	OrderID        string    `json:"orderId"`
	CustomerID     string    `json:"customerId"`
	CustomerName   string    `json:"customerName"`
	ProductName    string    `json:"productName"`
	PreviousStatus Status    `json:"previousStatus"`
	NewStatus      Status    `json:"newStatus"`
	UpdateDate     time.Time `json:"updateDate"`
	UpdateBy       string    `json:"updateBy"`
}
