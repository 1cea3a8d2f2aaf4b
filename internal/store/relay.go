package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"abcretail/internal/domain"
)

// Relay is the remote storage backend: the same record contract served by a
// relay service over HTTP. Provisioning is owned by the remote side.
type Relay struct {
	base string
	key  string
	hc   *http.Client
}

var _ Gateway = (*Relay)(nil)

func NewRelay(baseURL, accessKey string) *Relay {
	return &Relay{
		base: baseURL,
		key:  accessKey,
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Relay-side table names per entity kind.
const (
	tableCustomers = "Customers"
	tableProducts  = "Products"
	tableOrders    = "Orders"
)

func (r *Relay) EnsureSchema(ctx context.Context) error {
	return &domain.UnsupportedOperationError{Backend: "relay", Op: "EnsureSchema"}
}

func (r *Relay) entityURL(path, table, id string) string {
	v := url.Values{}
	v.Set("code", r.key)
	v.Set("table", table)
	if id != "" {
		v.Set("id", id)
	}
	return r.base + path + "?" + v.Encode()
}

// do runs one relay round-trip, mapping HTTP status to the error taxonomy
// and decoding a JSON body into out when provided.
func (r *Relay) do(ctx context.Context, method, rawURL string, body, out any, kind, key string) error {
	op := fmt.Sprintf("%s %s", method, kind)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &domain.TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.hc.Do(req)
	if err != nil {
		return &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &domain.NotFoundError{Kind: kind, Key: key}
	case resp.StatusCode == http.StatusConflict:
		return &domain.DuplicateKeyError{Kind: kind, Key: key}
	case resp.StatusCode == http.StatusPreconditionFailed:
		return &domain.ConcurrencyConflictError{Kind: kind, Key: key}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &domain.TransportError{Op: op, Err: fmt.Errorf("relay returned %s", resp.Status)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &domain.TransportError{Op: op, Err: err}
		}
	}
	return nil
}

// ---------- Customers ----------

func (r *Relay) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	var c domain.Customer
	err := r.do(ctx, http.MethodGet, r.entityURL("/api/entity", tableCustomers, id), nil, &c, domain.PartitionCustomer, id)
	return c, err
}

func (r *Relay) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	err := r.do(ctx, http.MethodGet, r.entityURL("/api/entities", tableCustomers, ""), nil, &out, domain.PartitionCustomer, "")
	return out, err
}

func (r *Relay) AddCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	c.Partition = domain.PartitionCustomer
	var saved domain.Customer
	err := r.do(ctx, http.MethodPost, r.entityURL("/api/entity", tableCustomers, ""), c, &saved, domain.PartitionCustomer, c.ID)
	return saved, err
}

func (r *Relay) UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	var saved domain.Customer
	err := r.do(ctx, http.MethodPut, r.entityURL("/api/entity", tableCustomers, c.ID), c, &saved, domain.PartitionCustomer, c.ID)
	return saved, err
}

func (r *Relay) DeleteCustomer(ctx context.Context, id string) error {
	err := r.do(ctx, http.MethodDelete, r.entityURL("/api/entity", tableCustomers, id), nil, nil, domain.PartitionCustomer, id)
	return ignoreNotFound(err)
}

// ---------- Products ----------

func (r *Relay) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.do(ctx, http.MethodGet, r.entityURL("/api/entity", tableProducts, id), nil, &p, domain.PartitionProduct, id)
	return p, err
}

func (r *Relay) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := r.do(ctx, http.MethodGet, r.entityURL("/api/entities", tableProducts, ""), nil, &out, domain.PartitionProduct, "")
	return out, err
}

func (r *Relay) AddProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Partition = domain.PartitionProduct
	var saved domain.Product
	err := r.do(ctx, http.MethodPost, r.entityURL("/api/entity", tableProducts, ""), p, &saved, domain.PartitionProduct, p.ID)
	return saved, err
}

func (r *Relay) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var saved domain.Product
	err := r.do(ctx, http.MethodPut, r.entityURL("/api/entity", tableProducts, p.ID), p, &saved, domain.PartitionProduct, p.ID)
	return saved, err
}

func (r *Relay) DeleteProduct(ctx context.Context, id string) error {
	err := r.do(ctx, http.MethodDelete, r.entityURL("/api/entity", tableProducts, id), nil, nil, domain.PartitionProduct, id)
	return ignoreNotFound(err)
}

// ---------- Orders ----------

func (r *Relay) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.do(ctx, http.MethodGet, r.entityURL("/api/entity", tableOrders, id), nil, &o, domain.PartitionOrder, id)
	return o, err
}

func (r *Relay) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.do(ctx, http.MethodGet, r.entityURL("/api/entities", tableOrders, ""), nil, &out, domain.PartitionOrder, "")
	return out, err
}

func (r *Relay) AddOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	o.Partition = domain.PartitionOrder
	var saved domain.Order
	err := r.do(ctx, http.MethodPost, r.entityURL("/api/entity", tableOrders, ""), o, &saved, domain.PartitionOrder, o.ID)
	return saved, err
}

func (r *Relay) UpdateOrder(ctx context.Context, o domain.Order) (domain.Order, error) {
	var saved domain.Order
	err := r.do(ctx, http.MethodPut, r.entityURL("/api/entity", tableOrders, o.ID), o, &saved, domain.PartitionOrder, o.ID)
	return saved, err
}

func (r *Relay) DeleteOrder(ctx context.Context, id string) error {
	err := r.do(ctx, http.MethodDelete, r.entityURL("/api/entity", tableOrders, id), nil, nil, domain.PartitionOrder, id)
	return ignoreNotFound(err)
}

// deletes are idempotent at this layer; an absent key is not an error.
func ignoreNotFound(err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return nil
	}
	return err
}
