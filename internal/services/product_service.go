package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"abcretail/internal/domain"
	"abcretail/internal/store"
)

type ProductService struct {
	Store store.Gateway
}

func NewProductService(gw store.Gateway) *ProductService {
	return &ProductService{Store: gw}
}

type ProductInput struct {
	ProductName    string
	Description    string
	Price          decimal.Decimal
	StockAvailable int
	ImageURL       string
}

var (
	errPrice = errors.New("price must be greater than zero")
	errStock = errors.New("stock available cannot be negative")
	errName  = errors.New("product name is required")
)

func (in ProductInput) validate() error {
	if in.ProductName == "" {
		return errName
	}
	if !in.Price.IsPositive() {
		return errPrice
	}
	if in.StockAvailable < 0 {
		return errStock
	}
	return nil
}

func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	return s.Store.ListProducts(ctx)
}

func (s *ProductService) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.Store.GetProduct(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		ID:             uuid.NewString(),
		ProductName:    in.ProductName,
		Description:    in.Description,
		Price:          in.Price,
		StockAvailable: in.StockAvailable,
		ImageURL:       in.ImageURL,
	}
	return s.Store.AddProduct(ctx, p)
}

// Edit merges editable fields onto the freshly read record; identity and
// version tag are preserved across the round-trip. Setting stock here is a
// back-office correction, not an order-side mutation.
func (s *ProductService) Edit(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	p.ProductName = in.ProductName
	p.Description = in.Description
	p.Price = in.Price
	p.StockAvailable = in.StockAvailable
	if in.ImageURL != "" {
		p.ImageURL = in.ImageURL
	}
	return s.Store.UpdateProduct(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteProduct(ctx, id)
}
