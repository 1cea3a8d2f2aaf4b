package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record partitions. Every entity lives in a kind-specific namespace and is
// addressed by (partition, id).
const (
	PartitionCustomer = "Customer"
	PartitionProduct  = "Product"
	PartitionOrder    = "Order"
)

// Status is the order lifecycle enum. The engine does not constrain
// transitions; any status may follow any status.
type Status string

const (
	StatusSubmitted  Status = "Submitted"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Statuses returns the fixed set of valid order statuses, in lifecycle order.
func Statuses() []Status {
	return []Status{StatusSubmitted, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}
}

// ParseStatus validates a raw status string against the enum.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses() {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type Customer struct {
	Partition string `db:"partition" json:"partition"`
	ID        string `db:"id" json:"id"`
	Version   int64  `db:"version" json:"version"`
	Name      string `db:"name" json:"name"`
	Surname   string `db:"surname" json:"surname"`
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
}

type Product struct {
	Partition      string          `db:"partition" json:"partition"`
	ID             string          `db:"id" json:"id"`
	Version        int64           `db:"version" json:"version"`
	ProductName    string          `db:"product_name" json:"productName"`
	Description    string          `db:"description" json:"description"`
	Price          decimal.Decimal `db:"price" json:"price"`
	StockAvailable int             `db:"stock_available" json:"stockAvailable"`
	ImageURL       string          `db:"image_url" json:"imageUrl"`
}

type Order struct {
	Partition  string          `db:"partition" json:"partition"`
	ID         string          `db:"id" json:"id"`
	Version    int64           `db:"version" json:"version"`
	CustomerID string          `db:"customer_id" json:"customerId"`
	Username   string          `db:"username" json:"username"`
	ProductID  string          `db:"product_id" json:"productId"`
	// Denormalized snapshot fields, captured at the last successful mutation.
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	TotalPrice  decimal.Decimal `db:"total_price" json:"totalPrice"`
	OrderDate   time.Time       `db:"order_date" json:"orderDate"`
	Status      Status          `db:"status" json:"status"`
}

// UTC normalizes a caller-supplied time into the single fixed zone all order
// dates are stored and compared in.
func UTC(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Total computes the invariant total for a line: unit price times quantity.
func Total(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}
