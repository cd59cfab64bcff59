package service

import (
	"context"
	"strings"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/validation"
	"medshop/pkg/logger"
	"medshop/pkg/pagination"
)

type CustomerRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	CustomerType string `json:"customer_type" binding:"omitempty,customer_type"`
}

type CustomerService interface {
	List(ctx context.Context, filter repository.ContactFilter, page pagination.Params) ([]model.Customer, error)
	Get(ctx context.Context, id uint) (*model.Customer, error)
	Create(ctx context.Context, req CustomerRequest) (*model.Customer, error)
	Update(ctx context.Context, id uint, req CustomerRequest) (*model.Customer, error)
	Delete(ctx context.Context, id uint) error
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

func validateCustomerRequest(req CustomerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperror.NewValidation("name is required")
	}
	if req.CustomerType != "" && !validation.IsCustomerType(req.CustomerType) {
		return apperror.NewValidationf("invalid customer_type %q", req.CustomerType)
	}
	return nil
}

func (s *customerService) List(ctx context.Context, filter repository.ContactFilter, page pagination.Params) ([]model.Customer, error) {
	customers, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return customers, nil
}

func (s *customerService) Get(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Customer", id)
	}
	return customer, nil
}

func (s *customerService) Create(ctx context.Context, req CustomerRequest) (*model.Customer, error) {
	if err := validateCustomerRequest(req); err != nil {
		return nil, err
	}

	customer := model.Customer{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		CustomerType: orDefault(req.CustomerType, model.CustomerTypeRetail),
	}
	if err := s.repo.Create(ctx, &customer); err != nil {
		return nil, storeErr(err, "Customer", "email")
	}
	return &customer, nil
}

// Update never touches total_purchases, which only invoices maintain
func (s *customerService) Update(ctx context.Context, id uint, req CustomerRequest) (*model.Customer, error) {
	if err := validateCustomerRequest(req); err != nil {
		return nil, err
	}

	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Customer", id)
	}
	customer.Name = strings.TrimSpace(req.Name)
	customer.Email = req.Email
	customer.Phone = req.Phone
	customer.Address = req.Address
	if req.CustomerType != "" {
		customer.CustomerType = req.CustomerType
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, storeErr(err, "Customer", "email")
	}
	return customer, nil
}

func (s *customerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "Customer", id)
	}

	used, err := s.repo.HasInvoices(ctx, id)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if used {
		return apperror.NewConflict("Customer has invoices and cannot be deleted").WithDetail("id", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Customer", id)
	}
	logger.Info(ctx, "customer deleted", "customer_id", id)
	return nil
}
