package service

import (
	"context"
	"strings"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/validation"
	"medshop/pkg/pagination"
)

type WholesalerRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentTerms  string `json:"payment_terms"`
	Status        string `json:"status" binding:"omitempty,record_status"`
}

type WholesalerService interface {
	List(ctx context.Context, filter repository.ContactFilter, page pagination.Params) ([]model.Wholesaler, error)
	Get(ctx context.Context, id uint) (*model.Wholesaler, error)
	Create(ctx context.Context, req WholesalerRequest) (*model.Wholesaler, error)
	Update(ctx context.Context, id uint, req WholesalerRequest) (*model.Wholesaler, error)
	Delete(ctx context.Context, id uint) error
}

type wholesalerService struct {
	repo repository.WholesalerRepository
}

func NewWholesalerService(repo repository.WholesalerRepository) WholesalerService {
	return &wholesalerService{repo: repo}
}

func validateWholesalerRequest(req WholesalerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperror.NewValidation("name is required")
	}
	if req.Status != "" && !validation.IsRecordStatus(req.Status) {
		return apperror.NewValidationf("invalid status %q", req.Status)
	}
	return nil
}

func (s *wholesalerService) List(ctx context.Context, filter repository.ContactFilter, page pagination.Params) ([]model.Wholesaler, error) {
	wholesalers, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return wholesalers, nil
}

func (s *wholesalerService) Get(ctx context.Context, id uint) (*model.Wholesaler, error) {
	wholesaler, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Wholesaler", id)
	}
	return wholesaler, nil
}

func (s *wholesalerService) Create(ctx context.Context, req WholesalerRequest) (*model.Wholesaler, error) {
	if err := validateWholesalerRequest(req); err != nil {
		return nil, err
	}

	wholesaler := model.Wholesaler{
		Name:          strings.TrimSpace(req.Name),
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentTerms:  req.PaymentTerms,
		Status:        orDefault(req.Status, model.StatusActive),
	}
	if err := s.repo.Create(ctx, &wholesaler); err != nil {
		return nil, storeErr(err, "Wholesaler", "name")
	}
	return &wholesaler, nil
}

func (s *wholesalerService) Update(ctx context.Context, id uint, req WholesalerRequest) (*model.Wholesaler, error) {
	if err := validateWholesalerRequest(req); err != nil {
		return nil, err
	}

	wholesaler, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Wholesaler", id)
	}
	wholesaler.Name = strings.TrimSpace(req.Name)
	wholesaler.ContactPerson = req.ContactPerson
	wholesaler.Email = req.Email
	wholesaler.Phone = req.Phone
	wholesaler.Address = req.Address
	wholesaler.PaymentTerms = req.PaymentTerms
	if req.Status != "" {
		wholesaler.Status = req.Status
	}

	if err := s.repo.Update(ctx, wholesaler); err != nil {
		return nil, storeErr(err, "Wholesaler", "name")
	}
	return wholesaler, nil
}

func (s *wholesalerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFoundOr(err, "Wholesaler", id)
	}

	used, err := s.repo.HasPurchaseOrders(ctx, id)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if used {
		return apperror.NewConflict("Wholesaler has purchase orders and cannot be deleted").WithDetail("id", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Wholesaler", id)
	}
	return nil
}
