package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"medshop/internal/apperror"
	"medshop/internal/cache"
	"medshop/internal/export"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/internal/validation"
	ws "medshop/internal/websocket"
	"medshop/pkg/logger"
	"medshop/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bounds of the expiring-items window in days
const (
	DefaultExpiryWindow = 30
	MaxExpiryWindow     = 3650
)

// DTOs
type InventoryRequest struct {
	Name         string           `json:"name" binding:"required"`
	GenericName  string           `json:"generic_name"`
	CategoryID   *uint            `json:"category_id"`
	Manufacturer string           `json:"manufacturer"`
	Strength     string           `json:"strength"`
	DosageForm   string           `json:"dosage_form"`
	PackSize     string           `json:"pack_size"`
	Barcode      *string          `json:"barcode"`
	SKU          string           `json:"sku"`
	CostPrice    *decimal.Decimal `json:"cost_price" binding:"required,gte=0"`
	SellingPrice *decimal.Decimal `json:"selling_price" binding:"required,gte=0"`
	Quantity     *int             `json:"quantity" binding:"omitempty,gte=0"`
	ReorderLevel *int             `json:"reorder_level" binding:"omitempty,gte=0"`
	ExpiryDate   *model.Date      `json:"expiry_date"`
	Location     string           `json:"location"`
	Status       string           `json:"status" binding:"omitempty,record_status"`
}

type StockUpdateRequest struct {
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Type     string `json:"type" binding:"required,stock_direction"`
	Reason   string `json:"reason"`
}

type StockUpdateResponse struct {
	ID               uint `json:"id"`
	PreviousQuantity int  `json:"previous_quantity"`
	NewQuantity      int  `json:"new_quantity"`
}

// InventoryResponse adds the derived low-stock flag to an item
type InventoryResponse struct {
	model.InventoryItem
	IsLowStock bool `json:"is_low_stock"`
}

type ExpiringItemResponse struct {
	InventoryResponse
	DaysUntilExpiry int `json:"days_until_expiry"`
}

type InventoryService interface {
	List(ctx context.Context, filter repository.InventoryFilter, page pagination.Params) ([]InventoryResponse, error)
	Get(ctx context.Context, id uint) (*InventoryResponse, error)
	Create(ctx context.Context, req InventoryRequest) (*InventoryResponse, error)
	Update(ctx context.Context, id uint, req InventoryRequest) (*InventoryResponse, error)
	Delete(ctx context.Context, id uint) error
	UpdateStock(ctx context.Context, id uint, req StockUpdateRequest) (*StockUpdateResponse, error)
	LowStock(ctx context.Context) ([]InventoryResponse, error)
	Expiring(ctx context.Context, days int) ([]ExpiringItemResponse, error)
	Export(ctx context.Context, filter repository.InventoryFilter, w io.Writer) error
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	categoryRepo  repository.CategoryRepository
	txManager     repository.TransactionManager
	events        EventPublisher
	stats         cache.Cache
}

func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	categoryRepo repository.CategoryRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	stats cache.Cache,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		categoryRepo:  categoryRepo,
		txManager:     txManager,
		events:        events,
		stats:         stats,
	}
}

func toInventoryResponse(item model.InventoryItem) InventoryResponse {
	return InventoryResponse{InventoryItem: item, IsLowStock: item.IsLowStock()}
}

func toInventoryResponses(items []model.InventoryItem) []InventoryResponse {
	res := make([]InventoryResponse, 0, len(items))
	for _, item := range items {
		res = append(res, toInventoryResponse(item))
	}
	return res
}

func validateInventoryRequest(req InventoryRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperror.NewValidation("name is required")
	}
	if req.CostPrice == nil || req.SellingPrice == nil {
		return apperror.NewValidation("cost_price and selling_price are required")
	}
	if req.CostPrice.IsNegative() || req.SellingPrice.IsNegative() {
		return apperror.NewValidation("prices must be greater than or equal to 0")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return apperror.NewValidation("quantity must be greater than or equal to 0")
	}
	if req.ReorderLevel != nil && *req.ReorderLevel < 0 {
		return apperror.NewValidation("reorder_level must be greater than or equal to 0")
	}
	if req.Status != "" && !validation.IsRecordStatus(req.Status) {
		return apperror.NewValidationf("invalid status %q", req.Status)
	}
	return nil
}

// normalizeBarcode stores blank barcodes as NULL so the unique index ignores them
func normalizeBarcode(b *string) *string {
	if b == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*b)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *inventoryService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NewValidationf("category %d does not exist", *id)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

func (s *inventoryService) List(ctx context.Context, filter repository.InventoryFilter, page pagination.Params) ([]InventoryResponse, error) {
	items, err := s.inventoryRepo.List(ctx, filter, page)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return toInventoryResponses(items), nil
}

func (s *inventoryService) Get(ctx context.Context, id uint) (*InventoryResponse, error) {
	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Inventory item", id)
	}
	res := toInventoryResponse(*item)
	return &res, nil
}

func (s *inventoryService) Create(ctx context.Context, req InventoryRequest) (*InventoryResponse, error) {
	if err := validateInventoryRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	item := model.InventoryItem{
		Name:         strings.TrimSpace(req.Name),
		GenericName:  req.GenericName,
		CategoryID:   req.CategoryID,
		Manufacturer: req.Manufacturer,
		Strength:     req.Strength,
		DosageForm:   req.DosageForm,
		PackSize:     req.PackSize,
		Barcode:      normalizeBarcode(req.Barcode),
		SKU:          orDefault(strings.TrimSpace(req.SKU), generateSKU()),
		CostPrice:    req.CostPrice.Round(2),
		SellingPrice: req.SellingPrice.Round(2),
		ReorderLevel: model.DefaultReorderLevel,
		ExpiryDate:   req.ExpiryDate,
		Location:     req.Location,
		Status:       orDefault(req.Status, model.StatusActive),
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}

	if err := s.inventoryRepo.Create(ctx, &item); err != nil {
		return nil, storeErr(err, "Inventory item", "sku or barcode")
	}

	logger.Info(ctx, "inventory item created", "item_id", item.ID, "sku", item.SKU, "quantity", item.Quantity)
	s.events.Publish(ws.EventInventoryCreated, map[string]any{"id": item.ID, "name": item.Name})
	invalidateStats(ctx, s.stats)

	return s.Get(ctx, item.ID)
}

// Update overwrites the supplied fields under a row lock. Quantity is only
// written when the caller explicitly sends one; otherwise the stored stock is left alone.
func (s *inventoryService) Update(ctx context.Context, id uint, req InventoryRequest) (*InventoryResponse, error) {
	if err := validateInventoryRequest(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	var change *stockChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.inventoryRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFoundOr(err, "Inventory item", id)
		}
		previous := item.Quantity
		applyInventoryRequest(item, req)

		if req.Quantity == nil {
			if err := s.inventoryRepo.UpdateDetails(txCtx, item); err != nil {
				return storeErr(err, "Inventory item", "sku or barcode")
			}
			return nil
		}

		if err := s.inventoryRepo.Update(txCtx, item); err != nil {
			return storeErr(err, "Inventory item", "sku or barcode")
		}
		if item.Quantity != previous {
			change = &stockChange{item: *item, previous: previous}
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}

	if change != nil {
		logger.Info(ctx, "stock set by item update",
			"item_id", id,
			"previous_quantity", change.previous,
			"new_quantity", change.item.Quantity,
		)
		publishStockChanges(s.events, []stockChange{*change})
	}
	invalidateStats(ctx, s.stats)

	return s.Get(ctx, id)
}

func applyInventoryRequest(item *model.InventoryItem, req InventoryRequest) {
	item.Name = strings.TrimSpace(req.Name)
	item.GenericName = req.GenericName
	item.CategoryID = req.CategoryID
	item.Manufacturer = req.Manufacturer
	item.Strength = req.Strength
	item.DosageForm = req.DosageForm
	item.PackSize = req.PackSize
	if req.Barcode != nil {
		item.Barcode = normalizeBarcode(req.Barcode)
	}
	if sku := strings.TrimSpace(req.SKU); sku != "" {
		item.SKU = sku
	}
	item.CostPrice = req.CostPrice.Round(2)
	item.SellingPrice = req.SellingPrice.Round(2)
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.ReorderLevel != nil {
		item.ReorderLevel = *req.ReorderLevel
	}
	item.ExpiryDate = req.ExpiryDate
	item.Location = req.Location
	if req.Status != "" {
		item.Status = req.Status
	}
}

func (s *inventoryService) Delete(ctx context.Context, id uint) error {
	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "Inventory item", id)
	}

	used, err := s.inventoryRepo.IsReferenced(ctx, id)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if used {
		return apperror.NewConflict("Inventory item is referenced by invoices or purchase orders and cannot be deleted").
			WithDetail("id", id)
	}

	if err := s.inventoryRepo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "Inventory item", id)
	}

	logger.Info(ctx, "inventory item deleted", "item_id", id, "sku", item.SKU)
	s.events.Publish(ws.EventInventoryDeleted, map[string]any{"id": id})
	invalidateStats(ctx, s.stats)
	return nil
}

// UpdateStock applies a manual adjustment under a row lock. A decrement below zero is rejected.
func (s *inventoryService) UpdateStock(ctx context.Context, id uint, req StockUpdateRequest) (*StockUpdateResponse, error) {
	if req.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be greater than 0")
	}
	direction, ok := validation.NormalizeDirection(req.Type)
	if !ok {
		return nil, apperror.NewValidationf("invalid stock adjustment type %q", req.Type)
	}

	var change stockChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.inventoryRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFoundOr(err, "Inventory item", id)
		}

		next := item.Quantity + req.Quantity
		if direction == validation.StockDecrease {
			next = item.Quantity - req.Quantity
			if next < 0 {
				return apperror.NewInsufficientStock(item.Name, item.ID, req.Quantity, item.Quantity)
			}
		}

		if err := s.inventoryRepo.UpdateQuantity(txCtx, id, next); err != nil {
			return fmt.Errorf("failed to update quantity: %w", err)
		}
		change = stockChange{item: *item, previous: item.Quantity}
		change.item.Quantity = next
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}

	logger.Info(ctx, "stock adjusted",
		"item_id", id,
		"direction", direction,
		"quantity", req.Quantity,
		"previous_quantity", change.previous,
		"new_quantity", change.item.Quantity,
		"reason", req.Reason,
	)
	publishStockChanges(s.events, []stockChange{change})
	invalidateStats(ctx, s.stats)

	return &StockUpdateResponse{ID: id, PreviousQuantity: change.previous, NewQuantity: change.item.Quantity}, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]InventoryResponse, error) {
	items, err := s.inventoryRepo.ListLowStock(ctx)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return toInventoryResponses(items), nil
}

// Expiring lists active items expiring within days, already expired ones included
func (s *inventoryService) Expiring(ctx context.Context, days int) ([]ExpiringItemResponse, error) {
	if days < 1 || days > MaxExpiryWindow {
		return nil, apperror.NewValidationf("days must be between 1 and %d", MaxExpiryWindow)
	}

	today := model.Today()
	items, err := s.inventoryRepo.ListExpiring(ctx, today.AddDays(days))
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}

	res := make([]ExpiringItemResponse, 0, len(items))
	for _, item := range items {
		res = append(res, ExpiringItemResponse{
			InventoryResponse: toInventoryResponse(item),
			DaysUntilExpiry:   today.DaysUntil(*item.ExpiryDate),
		})
	}
	return res, nil
}

// Export writes the filtered inventory as an xlsx workbook
func (s *inventoryService) Export(ctx context.Context, filter repository.InventoryFilter, w io.Writer) error {
	items, err := s.inventoryRepo.List(ctx, filter, pagination.Params{})
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if err := export.WriteInventory(w, items); err != nil {
		return apperror.NewInternal(fmt.Errorf("failed to render inventory workbook: %w", err))
	}
	return nil
}
