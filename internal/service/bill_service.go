package service

import (
	"context"
	"time"

	"medshop/internal/apperror"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/validation"
	ws "medshop/internal/websocket"
	"medshop/pkg/logger"
	"medshop/pkg/pagination"

	"github.com/shopspring/decimal"
)

type BillRequest struct {
	BillDate      *model.Date      `json:"bill_date" binding:"required"`
	VendorName    string           `json:"vendor_name"`
	Category      string           `json:"category"`
	Description   string           `json:"description"`
	Amount        *decimal.Decimal `json:"amount" binding:"required,gt=0"`
	PaymentStatus string           `json:"payment_status" binding:"omitempty,bill_status"`
	PaymentMethod string           `json:"payment_method"`
	DueDate       *model.Date      `json:"due_date"`
	Notes         string           `json:"notes"`
}

type BillService interface {
	List(ctx context.Context, filter repository.BillFilter, page pagination.Params) ([]model.Bill, error)
	Get(ctx context.Context, id uint) (*model.Bill, error)
	Create(ctx context.Context, userID *uint, req BillRequest) (*model.Bill, error)
	Update(ctx context.Context, id uint, req BillRequest) (*model.Bill, error)
	Delete(ctx context.Context, id uint) error
	Stats(ctx context.Context, period repository.DateRange) (*model.BillSummary, error)
}

type billService struct {
	repo   repository.BillRepository
	events EventPublisher
	now    func() time.Time
}

func NewBillService(repo repository.BillRepository, events EventPublisher) BillService {
	return &billService{repo: repo, events: events, now: time.Now}
}

func validateBillRequest(req BillRequest) error {
	if req.BillDate == nil || req.BillDate.IsZero() {
		return apperror.NewValidation("bill_date is required")
	}
	if req.Amount == nil || !req.Amount.IsPositive() {
		return apperror.NewValidation("amount must be greater than 0")
	}
	if req.PaymentStatus != "" && !validation.IsBillStatus(req.PaymentStatus) {
		return apperror.NewValidationf("invalid payment_status %q", req.PaymentStatus)
	}
	return nil
}

func (s *billService) List(ctx context.Context, filter repository.BillFilter, page pagination.Params) ([]model.Bill, error) {
	bills, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return bills, nil
}

func (s *billService) Get(ctx context.Context, id uint) (*model.Bill, error) {
	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Bill", id)
	}
	return bill, nil
}

func (s *billService) Create(ctx context.Context, userID *uint, req BillRequest) (*model.Bill, error) {
	if err := validateBillRequest(req); err != nil {
		return nil, err
	}

	bill := model.Bill{
		BillNumber:    documentNumber(PrefixBill, s.now()),
		BillDate:      *req.BillDate,
		VendorName:    req.VendorName,
		Category:      req.Category,
		Description:   req.Description,
		Amount:        req.Amount.Round(2),
		PaymentStatus: orDefault(req.PaymentStatus, model.BillStatusPending),
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		CreatedBy:     userID,
	}
	if err := s.repo.Create(ctx, &bill); err != nil {
		return nil, storeErr(err, "Bill", "bill_number")
	}

	logger.Info(ctx, "bill recorded", "bill_id", bill.ID, "bill_number", bill.BillNumber, "amount", bill.Amount.String())
	s.events.Publish(ws.EventBillCreated, map[string]any{"id": bill.ID, "bill_number": bill.BillNumber})
	return &bill, nil
}

func (s *billService) Update(ctx context.Context, id uint, req BillRequest) (*model.Bill, error) {
	if err := validateBillRequest(req); err != nil {
		return nil, err
	}

	bill, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Bill", id)
	}
	bill.BillDate = *req.BillDate
	bill.VendorName = req.VendorName
	bill.Category = req.Category
	bill.Description = req.Description
	bill.Amount = req.Amount.Round(2)
	if req.PaymentStatus != "" {
		bill.PaymentStatus = req.PaymentStatus
	}
	bill.PaymentMethod = req.PaymentMethod
	bill.DueDate = req.DueDate
	bill.Notes = req.Notes

	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, storeErr(err, "Bill", "bill_number")
	}
	return bill, nil
}

func (s *billService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Bill", id)
	}
	return nil
}

func (s *billService) Stats(ctx context.Context, period repository.DateRange) (*model.BillSummary, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, period)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return summary, nil
}
