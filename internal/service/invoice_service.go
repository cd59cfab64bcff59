package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medshop/internal/apperror"
	"medshop/internal/cache"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/validation"
	ws "medshop/internal/websocket"
	"medshop/pkg/logger"
	"medshop/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type InvoiceItemRequest struct {
	InventoryID uint             `json:"inventory_id" binding:"required"`
	Quantity    int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice   *decimal.Decimal `json:"unit_price" binding:"required,gte=0"`
}

type CreateInvoiceRequest struct {
	CustomerID     uint                 `json:"customer_id" binding:"required"`
	InvoiceDate    *model.Date          `json:"invoice_date" binding:"required"`
	DueDate        *model.Date          `json:"due_date"`
	Items          []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxAmount      *decimal.Decimal     `json:"tax_amount" binding:"omitempty,gte=0"`
	DiscountAmount *decimal.Decimal     `json:"discount_amount" binding:"omitempty,gte=0"`
	PaymentMethod  string               `json:"payment_method"`
	Notes          string               `json:"notes"`
}

type MarkPaidRequest struct {
	PaymentMethod string           `json:"payment_method"`
	Amount        *decimal.Decimal `json:"amount" binding:"omitempty,gte=0"`
	Notes         string           `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// InvoiceResponse adds the read-time overdue derivation
type InvoiceResponse struct {
	model.Invoice
	IsOverdue     bool   `json:"is_overdue"`
	DisplayStatus string `json:"display_status"`
}

// --- Interface ---

type InvoiceService interface {
	Create(ctx context.Context, userID *uint, req CreateInvoiceRequest) (*InvoiceResponse, error)
	Delete(ctx context.Context, id uint) error
	MarkPaid(ctx context.Context, id uint, req MarkPaidRequest) (*InvoiceResponse, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*InvoiceResponse, error)
	List(ctx context.Context, filter repository.InvoiceFilter, page pagination.Params) ([]InvoiceResponse, error)
	Get(ctx context.Context, id uint) (*InvoiceResponse, error)
	Stats(ctx context.Context, period repository.DateRange) (*model.InvoiceSummary, error)
}

type invoiceService struct {
	invoiceRepo   repository.InvoiceRepository
	inventoryRepo repository.InventoryRepository
	customerRepo  repository.CustomerRepository
	txManager     repository.TransactionManager
	events        EventPublisher
	stats         cache.Cache
	now           func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	inventoryRepo repository.InventoryRepository,
	customerRepo repository.CustomerRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	stats cache.Cache,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:   invoiceRepo,
		inventoryRepo: inventoryRepo,
		customerRepo:  customerRepo,
		txManager:     txManager,
		events:        events,
		stats:         stats,
		now:           time.Now,
	}
}

func (s *invoiceService) toResponse(inv model.Invoice) InvoiceResponse {
	overdue := inv.IsOverdue(model.NewDate(s.now()))
	display := inv.Status
	if overdue {
		display = model.InvoiceStatusOverdue
	}
	return InvoiceResponse{Invoice: inv, IsOverdue: overdue, DisplayStatus: display}
}

// invoiceTotals computes subtotal and total; it also validates the request
func invoiceTotals(req CreateInvoiceRequest) (subtotal, tax, discount, total decimal.Decimal, err error) {
	if req.CustomerID == 0 {
		return subtotal, tax, discount, total, apperror.NewValidation("customer_id is required")
	}
	if req.InvoiceDate == nil || req.InvoiceDate.IsZero() {
		return subtotal, tax, discount, total, apperror.NewValidation("invoice_date is required")
	}
	if len(req.Items) == 0 {
		return subtotal, tax, discount, total, apperror.NewValidation("at least one item is required")
	}

	subtotal = decimal.Zero
	for i, item := range req.Items {
		if item.InventoryID == 0 {
			return subtotal, tax, discount, total, apperror.NewValidationf("items[%d].inventory_id is required", i)
		}
		if item.Quantity <= 0 {
			return subtotal, tax, discount, total, apperror.NewValidationf("items[%d].quantity must be greater than 0", i)
		}
		if item.UnitPrice == nil || item.UnitPrice.IsNegative() {
			return subtotal, tax, discount, total, apperror.NewValidationf("items[%d].unit_price must be greater than or equal to 0", i)
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tax, discount = decimal.Zero, decimal.Zero
	if req.TaxAmount != nil {
		tax = *req.TaxAmount
	}
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	if tax.IsNegative() || discount.IsNegative() {
		return subtotal, tax, discount, total, apperror.NewValidation("tax_amount and discount_amount must be greater than or equal to 0")
	}

	subtotal = subtotal.Round(2)
	tax = tax.Round(2)
	discount = discount.Round(2)
	total = subtotal.Add(tax).Sub(discount)
	if total.IsNegative() {
		return subtotal, tax, discount, total, apperror.NewValidation("discount_amount exceeds the invoice amount")
	}
	return subtotal, tax, discount, total, nil
}

// Create persists the invoice, decrements stock and credits the customer in one transaction
func (s *invoiceService) Create(ctx context.Context, userID *uint, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	subtotal, tax, discount, total, err := invoiceTotals(req)
	if err != nil {
		return nil, err
	}

	invoice := model.Invoice{
		InvoiceNumber:  documentNumber(PrefixInvoice, s.now()),
		CustomerID:     req.CustomerID,
		InvoiceDate:    *req.InvoiceDate,
		DueDate:        req.DueDate,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		TotalAmount:    total,
		Status:         model.InvoiceStatusPending,
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
		CreatedBy:      userID,
	}

	var changes []stockChange
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := s.customerRepo.FindByIDForUpdate(txCtx, req.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewValidationf("customer %d does not exist", req.CustomerID)
			}
			return fmt.Errorf("failed to load customer: %w", err)
		}

		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return storeErr(err, "Invoice", "invoice_number")
		}

		for _, itemReq := range req.Items {
			item, err := s.inventoryRepo.FindByIDForUpdate(txCtx, itemReq.InventoryID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NewValidationf("inventory item %d does not exist", itemReq.InventoryID)
				}
				return fmt.Errorf("failed to lock inventory item %d: %w", itemReq.InventoryID, err)
			}
			if item.Quantity < itemReq.Quantity {
				return apperror.NewInsufficientStock(item.Name, item.ID, itemReq.Quantity, item.Quantity)
			}

			line := model.InvoiceItem{
				InvoiceID:   invoice.ID,
				InventoryID: item.ID,
				Quantity:    itemReq.Quantity,
				UnitPrice:   itemReq.UnitPrice.Round(2),
				TotalPrice:  itemReq.UnitPrice.Mul(decimal.NewFromInt(int64(itemReq.Quantity))).Round(2),
			}
			if err := s.invoiceRepo.CreateItem(txCtx, &line); err != nil {
				return fmt.Errorf("failed to create invoice item: %w", err)
			}

			previous := item.Quantity
			item.Quantity -= itemReq.Quantity
			if err := s.inventoryRepo.UpdateQuantity(txCtx, item.ID, item.Quantity); err != nil {
				return fmt.Errorf("failed to decrement stock: %w", err)
			}
			changes = append(changes, stockChange{item: *item, previous: previous})
		}

		if err := s.customerRepo.SetTotalPurchases(txCtx, customer.ID, customer.TotalPurchases.Add(total).Round(2)); err != nil {
			return fmt.Errorf("failed to update customer purchases: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}

	logger.Info(ctx, "invoice created",
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"customer_id", invoice.CustomerID,
		"total_amount", invoice.TotalAmount.String(),
		"items", len(req.Items),
	)
	s.events.Publish(ws.EventInvoiceCreated, map[string]any{
		"id":             invoice.ID,
		"invoice_number": invoice.InvoiceNumber,
		"customer_id":    invoice.CustomerID,
		"total_amount":   invoice.TotalAmount,
	})
	publishStockChanges(s.events, changes)
	invalidateStats(ctx, s.stats)

	return s.Get(ctx, invoice.ID)
}

// Delete restores stock for every line and reverses the customer's purchase total (floored at 0)
func (s *invoiceService) Delete(ctx context.Context, id uint) error {
	var (
		invoice *model.Invoice
		changes []stockChange
	)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFoundOr(err, "Invoice", id)
		}

		for _, line := range invoice.Items {
			item, err := s.inventoryRepo.FindByIDForUpdate(txCtx, line.InventoryID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					logger.Warn(txCtx, "inventory item gone, stock not restored", "invoice_id", id, "inventory_id", line.InventoryID)
					continue
				}
				return fmt.Errorf("failed to lock inventory item %d: %w", line.InventoryID, err)
			}

			previous := item.Quantity
			item.Quantity += line.Quantity
			if err := s.inventoryRepo.UpdateQuantity(txCtx, item.ID, item.Quantity); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
			changes = append(changes, stockChange{item: *item, previous: previous})
		}

		if err := s.invoiceRepo.Delete(txCtx, id); err != nil {
			return notFoundOr(err, "Invoice", id)
		}

		customer, err := s.customerRepo.FindByIDForUpdate(txCtx, invoice.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load customer: %w", err)
		}
		remaining := customer.TotalPurchases.Sub(invoice.TotalAmount)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		if err := s.customerRepo.SetTotalPurchases(txCtx, customer.ID, remaining.Round(2)); err != nil {
			return fmt.Errorf("failed to update customer purchases: %w", err)
		}
		return nil
	})
	if err != nil {
		return passThrough(err)
	}

	logger.Info(ctx, "invoice deleted",
		"invoice_id", id,
		"invoice_number", invoice.InvoiceNumber,
		"restored_lines", len(changes),
	)
	s.events.Publish(ws.EventInvoiceDeleted, map[string]any{"id": id, "invoice_number": invoice.InvoiceNumber})
	publishStockChanges(s.events, changes)
	invalidateStats(ctx, s.stats)
	return nil
}

// MarkPaid records a payment. Amount and notes only go to the audit log.
func (s *invoiceService) MarkPaid(ctx context.Context, id uint, req MarkPaidRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Invoice", id)
	}
	if invoice.Status == model.InvoiceStatusCancelled {
		return nil, apperror.NewValidation("A cancelled invoice cannot be paid")
	}

	fields := map[string]interface{}{"status": model.InvoiceStatusPaid}
	if req.PaymentMethod != "" {
		fields["payment_method"] = req.PaymentMethod
	}
	if err := s.invoiceRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, notFoundOr(err, "Invoice", id)
	}

	amount := invoice.TotalAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	logger.Info(ctx, "invoice payment recorded",
		"invoice_id", id,
		"invoice_number", invoice.InvoiceNumber,
		"payment_method", req.PaymentMethod,
		"amount", amount.String(),
		"notes", req.Notes,
	)
	s.events.Publish(ws.EventInvoicePaid, map[string]any{"id": id, "invoice_number": invoice.InvoiceNumber})
	invalidateStats(ctx, s.stats)

	return s.Get(ctx, id)
}

// UpdateStatus only changes the stored status; stock is never touched
func (s *invoiceService) UpdateStatus(ctx context.Context, id uint, status string) (*InvoiceResponse, error) {
	if !validation.IsInvoiceStatus(status) {
		return nil, apperror.NewValidationf("invalid invoice status %q", status)
	}
	if err := s.invoiceRepo.UpdateFields(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, notFoundOr(err, "Invoice", id)
	}
	invalidateStats(ctx, s.stats)
	return s.Get(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, filter repository.InvoiceFilter, page pagination.Params) ([]InvoiceResponse, error) {
	invoices, err := s.invoiceRepo.List(ctx, filter, page)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	res := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		res = append(res, s.toResponse(inv))
	}
	return res, nil
}

func (s *invoiceService) Get(ctx context.Context, id uint) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Invoice", id)
	}
	res := s.toResponse(*invoice)
	return &res, nil
}

// Stats summarises invoices dated within period; an empty period covers all of them
func (s *invoiceService) Stats(ctx context.Context, period repository.DateRange) (*model.InvoiceSummary, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	summary, err := s.invoiceRepo.Summary(ctx, period, model.NewDate(s.now()))
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return summary, nil
}
