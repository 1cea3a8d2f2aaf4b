package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"abcretail/internal/domain"
)

// Store is the direct storage backend: keyed records in sqlite with a
// per-record integer version used as the concurrency tag.
type Store struct {
	db *sqlx.DB
}

var _ Gateway = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	// Prices are stored as TEXT so decimals round-trip exactly.
	schema := `
CREATE TABLE IF NOT EXISTS customers(
  partition TEXT NOT NULL DEFAULT 'Customer',
  id TEXT PRIMARY KEY,
  version INTEGER NOT NULL DEFAULT 1,
  name TEXT NOT NULL,
  surname TEXT NOT NULL,
  username TEXT NOT NULL,
  email TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products(
  partition TEXT NOT NULL DEFAULT 'Product',
  id TEXT PRIMARY KEY,
  version INTEGER NOT NULL DEFAULT 1,
  product_name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  stock_available INTEGER NOT NULL CHECK (stock_available >= 0),
  image_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders(
  partition TEXT NOT NULL DEFAULT 'Order',
  id TEXT PRIMARY KEY,
  version INTEGER NOT NULL DEFAULT 1,
  customer_id TEXT NOT NULL,
  username TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price TEXT NOT NULL,
  total_price TEXT NOT NULL,
  order_date TEXT NOT NULL,
  status TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_orders_product  ON orders(product_id);
`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ---------- Customers ----------

func (s *Store) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := s.db.GetContext(ctx, &c, `SELECT * FROM customers WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, &domain.NotFoundError{Kind: domain.PartitionCustomer, Key: id}
	}
	if err != nil {
		return domain.Customer{}, &domain.TransportError{Op: "get customer", Err: err}
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := s.db.SelectContext(ctx, &out, `SELECT * FROM customers ORDER BY username`); err != nil {
		return nil, &domain.TransportError{Op: "list customers", Err: err}
	}
	return out, nil
}

func (s *Store) AddCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.Partition = domain.PartitionCustomer
	c.Version = 1
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers(partition, id, version, name, surname, username, email)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Partition, c.ID, c.Version, c.Name, c.Surname, c.Username, c.Email)
	if isDuplicate(err) {
		return domain.Customer{}, &domain.DuplicateKeyError{Kind: domain.PartitionCustomer, Key: c.ID}
	}
	if err != nil {
		return domain.Customer{}, &domain.TransportError{Op: "add customer", Err: err}
	}
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers SET version = version + 1, name = ?, surname = ?, username = ?, email = ?
		WHERE id = ? AND version = ?`,
		c.Name, c.Surname, c.Username, c.Email, c.ID, c.Version)
	if err != nil {
		return domain.Customer{}, &domain.TransportError{Op: "update customer", Err: err}
	}
	if err := s.casOutcome(ctx, res, "customers", domain.PartitionCustomer, c.ID); err != nil {
		return domain.Customer{}, err
	}
	c.Version++
	return c, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
		return &domain.TransportError{Op: "delete customer", Err: err}
	}
	return nil
}

// ---------- Products ----------

func (s *Store) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, `SELECT * FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, &domain.NotFoundError{Kind: domain.PartitionProduct, Key: id}
	}
	if err != nil {
		return domain.Product{}, &domain.TransportError{Op: "get product", Err: err}
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := s.db.SelectContext(ctx, &out, `SELECT * FROM products ORDER BY product_name`); err != nil {
		return nil, &domain.TransportError{Op: "list products", Err: err}
	}
	return out, nil
}

func (s *Store) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Partition = domain.PartitionProduct
	p.Version = 1
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products(partition, id, version, product_name, description, price, stock_available, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Partition, p.ID, p.Version, p.ProductName, p.Description, p.Price, p.StockAvailable, p.ImageURL)
	if isDuplicate(err) {
		return domain.Product{}, &domain.DuplicateKeyError{Kind: domain.PartitionProduct, Key: p.ID}
	}
	if err != nil {
		return domain.Product{}, &domain.TransportError{Op: "add product", Err: err}
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products SET version = version + 1, product_name = ?, description = ?, price = ?, stock_available = ?, image_url = ?
		WHERE id = ? AND version = ?`,
		p.ProductName, p.Description, p.Price, p.StockAvailable, p.ImageURL, p.ID, p.Version)
	if err != nil {
		return domain.Product{}, &domain.TransportError{Op: "update product", Err: err}
	}
	if err := s.casOutcome(ctx, res, "products", domain.PartitionProduct, p.ID); err != nil {
		return domain.Product{}, err
	}
	p.Version++
	return p, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return &domain.TransportError{Op: "delete product", Err: err}
	}
	return nil
}

// ---------- Orders ----------

// orderRow keeps the date as RFC 3339 text; sqlite has no native time type.
type orderRow struct {
	Partition   string `db:"partition"`
	ID          string `db:"id"`
	Version     int64  `db:"version"`
	CustomerID  string `db:"customer_id"`
	Username    string `db:"username"`
	ProductID   string `db:"product_id"`
	ProductName string `db:"product_name"`
	Quantity    int    `db:"quantity"`
	UnitPrice   string `db:"unit_price"`
	TotalPrice  string `db:"total_price"`
	OrderDate   string `db:"order_date"`
	Status      string `db:"status"`
}

func (r orderRow) toOrder() (domain.Order, error) {
	unit, err := decimalFromString(r.UnitPrice)
	if err != nil {
		return domain.Order{}, err
	}
	total, err := decimalFromString(r.TotalPrice)
	if err != nil {
		return domain.Order{}, err
	}
	date, err := time.Parse(time.RFC3339Nano, r.OrderDate)
	if err != nil {
		return domain.Order{}, err
	}
	return domain.Order{
		Partition:   r.Partition,
		ID:          r.ID,
		Version:     r.Version,
		CustomerID:  r.CustomerID,
		Username:    r.Username,
		ProductID:   r.ProductID,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		UnitPrice:   unit,
		TotalPrice:  total,
		OrderDate:   date.UTC(),
		Status:      domain.Status(r.Status),
	}, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var r orderRow
	err := s.db.GetContext(ctx, &r, `SELECT * FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, &domain.NotFoundError{Kind: domain.PartitionOrder, Key: id}
	}
	if err != nil {
		return domain.Order{}, &domain.TransportError{Op: "get order", Err: err}
	}
	o, err := r.toOrder()
	if err != nil {
		return domain.Order{}, &domain.TransportError{Op: "decode order", Err: err}
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM orders ORDER BY order_date DESC`); err != nil {
		return nil, &domain.TransportError{Op: "list orders", Err: err}
	}
	out := make([]domain.Order, 0, len(rows))
	for _, r := range rows {
		o, err := r.toOrder()
		if err != nil {
			return nil, &domain.TransportError{Op: "decode order", Err: err}
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Store) AddOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	o.Partition = domain.PartitionOrder
	o.Version = 1
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders(partition, id, version, customer_id, username, product_id, product_name,
		                   quantity, unit_price, total_price, order_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Partition, o.ID, o.Version, o.CustomerID, o.Username, o.ProductID, o.ProductName,
		o.Quantity, o.UnitPrice.String(), o.TotalPrice.String(),
		o.OrderDate.UTC().Format(time.RFC3339Nano), string(o.Status))
	if isDuplicate(err) {
		return domain.Order{}, &domain.DuplicateKeyError{Kind: domain.PartitionOrder, Key: o.ID}
	}
	if err != nil {
		return domain.Order{}, &domain.TransportError{Op: "add order", Err: err}
	}
	return o, nil
}

func (s *Store) UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET version = version + 1, customer_id = ?, username = ?, product_id = ?,
		       product_name = ?, quantity = ?, unit_price = ?, total_price = ?, order_date = ?, status = ?
		WHERE id = ? AND version = ?`,
		o.CustomerID, o.Username, o.ProductID, o.ProductName, o.Quantity,
		o.UnitPrice.String(), o.TotalPrice.String(),
		o.OrderDate.UTC().Format(time.RFC3339Nano), string(o.Status),
		o.ID, o.Version)
	if err != nil {
		return domain.Order{}, &domain.TransportError{Op: "update order", Err: err}
	}
	if err := s.casOutcome(ctx, res, "orders", domain.PartitionOrder, o.ID); err != nil {
		return domain.Order{}, err
	}
	o.Version++
	return o, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id); err != nil {
		return &domain.TransportError{Op: "delete order", Err: err}
	}
	return nil
}

func decimalFromString(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// casOutcome classifies a zero-row compare-and-swap update: the row is either
// gone or its version moved.
func (s *Store) casOutcome(ctx context.Context, res sql.Result, table, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &domain.TransportError{Op: "update " + table, Err: err}
	}
	if n > 0 {
		return nil
	}
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM `+table+` WHERE id = ?`, id); err != nil {
		return &domain.TransportError{Op: "update " + table, Err: err}
	}
	if count == 0 {
		return &domain.NotFoundError{Kind: kind, Key: id}
	}
	return &domain.ConcurrencyConflictError{Kind: kind, Key: id}
}
