package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"abcretail/internal/domain"
	"abcretail/internal/store"
	"abcretail/internal/validate"
)

type CustomerService struct {
	Store store.Gateway
}

func NewCustomerService(gw store.Gateway) *CustomerService {
	return &CustomerService{Store: gw}
}

type CustomerInput struct {
	Name     string
	Surname  string
	Username string
	Email    string
}

func (in CustomerInput) validate() error {
	if _, ok := validate.Name(in.Name); !ok {
		return errors.New("invalid name")
	}
	if _, ok := validate.Name(in.Username); !ok {
		return errors.New("invalid username")
	}
	if _, ok := validate.Email(in.Email); !ok {
		return errors.New("invalid email")
	}
	return nil
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.Store.ListCustomers(ctx)
}

func (s *CustomerService) Get(ctx context.Context, id string) (domain.Customer, error) {
	return s.Store.GetCustomer(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (domain.Customer, error) {
	if err := in.validate(); err != nil {
		return domain.Customer{}, err
	}
	c := domain.Customer{
		ID:       uuid.NewString(),
		Name:     in.Name,
		Surname:  in.Surname,
		Username: in.Username,
		Email:    in.Email,
	}
	return s.Store.AddCustomer(ctx, c)
}

// Edit merges the editable fields onto a freshly read record so the
// partition, key and version tag round-trip intact.
func (s *CustomerService) Edit(ctx context.Context, id string, in CustomerInput) (domain.Customer, error) {
	if err := in.validate(); err != nil {
		return domain.Customer{}, err
	}
	c, err := s.Store.GetCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	c.Name = in.Name
	c.Surname = in.Surname
	c.Username = in.Username
	c.Email = in.Email
	return s.Store.UpdateCustomer(ctx, c)
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return s.Store.DeleteCustomer(ctx, id)
}
