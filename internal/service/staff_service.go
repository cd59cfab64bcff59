package service

import (
	"context"
	"strings"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/validation"
	"medshop/pkg/pagination"

	"github.com/shopspring/decimal"
)

type StaffRequest struct {
	Name     string           `json:"name" binding:"required"`
	Email    string           `json:"email" binding:"required,email"`
	Phone    string           `json:"phone"`
	Position string           `json:"position"`
	Salary   *decimal.Decimal `json:"salary" binding:"omitempty,gte=0"`
	HireDate *model.Date      `json:"hire_date"`
	Status   string           `json:"status" binding:"omitempty,record_status"`
}

type StaffService interface {
	List(ctx context.Context, filter repository.ContactFilter, page pagination.Params) ([]model.Staff, error)
	Get(ctx context.Context, id uint) (*model.Staff, error)
	Create(ctx context.Context, req StaffRequest) (*model.Staff, error)
	Update(ctx context.Context, id uint, req StaffRequest) (*model.Staff, error)
	Delete(ctx context.Context, id uint) error
}

type staffService struct {
	repo repository.StaffRepository
}

func NewStaffService(repo repository.StaffRepository) StaffService {
	return &staffService{repo: repo}
}

func validateStaffRequest(req StaffRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return apperror.NewValidation("name and email are required")
	}
	if req.Salary != nil && req.Salary.IsNegative() {
		return apperror.NewValidation("salary must be greater than or equal to 0")
	}
	if req.Status != "" && !validation.IsRecordStatus(req.Status) {
		return apperror.NewValidationf("invalid status %q", req.Status)
	}
	return nil
}

func (s *staffService) List(ctx context.Context, filter repository.ContactFilter, page pagination.Params) ([]model.Staff, error) {
	staff, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return staff, nil
}

func (s *staffService) Get(ctx context.Context, id uint) (*model.Staff, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Staff member", id)
	}
	return member, nil
}

func (s *staffService) Create(ctx context.Context, req StaffRequest) (*model.Staff, error) {
	if err := validateStaffRequest(req); err != nil {
		return nil, err
	}

	member := model.Staff{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    req.Phone,
		Position: req.Position,
		Salary:   decimal.Zero,
		HireDate: req.HireDate,
		Status:   orDefault(req.Status, model.StatusActive),
	}
	if req.Salary != nil {
		member.Salary = req.Salary.Round(2)
	}

	if err := s.repo.Create(ctx, &member); err != nil {
		return nil, storeErr(err, "Staff member", "email")
	}
	return &member, nil
}

func (s *staffService) Update(ctx context.Context, id uint, req StaffRequest) (*model.Staff, error) {
	if err := validateStaffRequest(req); err != nil {
		return nil, err
	}

	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Staff member", id)
	}
	member.Name = strings.TrimSpace(req.Name)
	member.Email = strings.TrimSpace(req.Email)
	member.Phone = req.Phone
	member.Position = req.Position
	if req.Salary != nil {
		member.Salary = req.Salary.Round(2)
	}
	member.HireDate = req.HireDate
	if req.Status != "" {
		member.Status = req.Status
	}

	if err := s.repo.Update(ctx, member); err != nil {
		return nil, storeErr(err, "Staff member", "email")
	}
	return member, nil
}

func (s *staffService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Staff member", id)
	}
	return nil
}
