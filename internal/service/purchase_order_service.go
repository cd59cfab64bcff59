package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

type PurchaseOrderItemRequest struct {
	InventoryID uint             `json:"inventory_id" binding:"required"`
	Quantity    int              `json:"quantity" binding:"required,gt=0"`
	UnitCost    *decimal.Decimal `json:"unit_cost" binding:"required,gte=0"`
}

type CreatePurchaseOrderRequest struct {
	WholesalerID     uint                       `json:"wholesaler_id" binding:"required"`
	OrderDate        *model.Date                `json:"order_date" binding:"required"`
	ExpectedDelivery *model.Date                `json:"expected_delivery"`
	Notes            string                     `json:"notes"`
	Items            []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReceiveItemRequest identifies a PO line by its inventory id
type ReceiveItemRequest struct {
	ItemID           uint `json:"item_id" binding:"required"`
	ReceivedQuantity int  `json:"received_quantity" binding:"required,gt=0"`
}

type ReceivePurchaseOrderRequest struct {
	ReceivedItems []ReceiveItemRequest `json:"received_items" binding:"required,min=1,dive"`
}

// --- Interface ---

type PurchaseOrderService interface {
	Create(ctx context.Context, userID *uint, req CreatePurchaseOrderRequest) (*model.PurchaseOrder, error)
	Receive(ctx context.Context, id uint, req ReceivePurchaseOrderRequest) (*model.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, id uint, status string) (*model.PurchaseOrder, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter repository.PurchaseOrderFilter, page pagination.Params) ([]model.PurchaseOrder, error)
	Get(ctx context.Context, id uint) (*model.PurchaseOrder, error)
	Stats(ctx context.Context, period repository.DateRange) (*model.PurchaseOrderSummary, error)
}

type purchaseOrderService struct {
	poRepo         repository.PurchaseOrderRepository
	inventoryRepo  repository.InventoryRepository
	wholesalerRepo repository.WholesalerRepository
	txManager      repository.TransactionManager
	events         EventPublisher
	stats          cache.Cache
	now            func() time.Time
}

func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	inventoryRepo repository.InventoryRepository,
	wholesalerRepo repository.WholesalerRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	stats cache.Cache,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:         poRepo,
		inventoryRepo:  inventoryRepo,
		wholesalerRepo: wholesalerRepo,
		txManager:      txManager,
		events:         events,
		stats:          stats,
		now:            time.Now,
	}
}

func validatePurchaseOrderRequest(req CreatePurchaseOrderRequest) (decimal.Decimal, error) {
	if req.WholesalerID == 0 {
		return decimal.Zero, apperror.NewValidation("wholesaler_id is required")
	}
	if req.OrderDate == nil || req.OrderDate.IsZero() {
		return decimal.Zero, apperror.NewValidation("order_date is required")
	}
	if len(req.Items) == 0 {
		return decimal.Zero, apperror.NewValidation("at least one item is required")
	}

	total := decimal.Zero
	for i, item := range req.Items {
		if item.InventoryID == 0 {
			return decimal.Zero, apperror.NewValidationf("items[%d].inventory_id is required", i)
		}
		if item.Quantity <= 0 {
			return decimal.Zero, apperror.NewValidationf("items[%d].quantity must be greater than 0", i)
		}
		if item.UnitCost == nil || item.UnitCost.IsNegative() {
			return decimal.Zero, apperror.NewValidationf("items[%d].unit_cost must be greater than or equal to 0", i)
		}
		total = total.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2), nil
}

// Create persists the order and its lines. Stock is only affected on receipt.
func (s *purchaseOrderService) Create(ctx context.Context, userID *uint, req CreatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	total, err := validatePurchaseOrderRequest(req)
	if err != nil {
		return nil, err
	}

	po := model.PurchaseOrder{
		PONumber:         documentNumber(PrefixPurchaseOrder, s.now()),
		WholesalerID:     req.WholesalerID,
		OrderDate:        *req.OrderDate,
		ExpectedDelivery: req.ExpectedDelivery,
		TotalAmount:      total,
		Status:           model.POStatusPending,
		Notes:            req.Notes,
		CreatedBy:        userID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.wholesalerRepo.FindByID(txCtx, req.WholesalerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NewValidationf("wholesaler %d does not exist", req.WholesalerID)
			}
			return fmt.Errorf("failed to load wholesaler: %w", err)
		}

		if err := s.poRepo.Create(txCtx, &po); err != nil {
			return storeErr(err, "Purchase order", "po_number")
		}

		for _, itemReq := range req.Items {
			if _, err := s.inventoryRepo.FindByID(txCtx, itemReq.InventoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NewValidationf("inventory item %d does not exist", itemReq.InventoryID)
				}
				return fmt.Errorf("failed to load inventory item %d: %w", itemReq.InventoryID, err)
			}

			line := model.PurchaseOrderItem{
				PurchaseOrderID: po.ID,
				InventoryID:     itemReq.InventoryID,
				Quantity:        itemReq.Quantity,
				UnitCost:        itemReq.UnitCost.Round(2),
				TotalCost:       itemReq.UnitCost.Mul(decimal.NewFromInt(int64(itemReq.Quantity))).Round(2),
			}
			if err := s.poRepo.CreateItem(txCtx, &line); err != nil {
				return fmt.Errorf("failed to create purchase order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}

	logger.Info(ctx, "purchase order created",
		"purchase_order_id", po.ID,
		"po_number", po.PONumber,
		"wholesaler_id", po.WholesalerID,
		"total_amount", po.TotalAmount.String(),
	)
	s.events.Publish(ws.EventPurchaseOrderCreated, map[string]any{"id": po.ID, "po_number": po.PONumber})
	invalidateStats(ctx, s.stats)

	return s.Get(ctx, po.ID)
}

// Receive books delivered quantities into stock. Quantities for an inventory id are spread
// over its lines in id order; receiving more than is outstanding fails the whole call.
func (s *purchaseOrderService) Receive(ctx context.Context, id uint, req ReceivePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	if len(req.ReceivedItems) == 0 {
		return nil, apperror.NewValidation("received_items must contain at least 1 item(s)")
	}
	for i, r := range req.ReceivedItems {
		if r.ItemID == 0 || r.ReceivedQuantity <= 0 {
			return nil, apperror.NewValidationf("received_items[%d] needs item_id and a received_quantity greater than 0", i)
		}
	}

	var (
		po      *model.PurchaseOrder
		changes []stockChange
	)
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		po, err = s.poRepo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFoundOr(err, "Purchase order", id)
		}
		if po.Status == model.POStatusCancelled {
			return apperror.NewValidation("A cancelled purchase order cannot be received")
		}

		lines := make(map[uint][]*model.PurchaseOrderItem)
		for i := range po.Items {
			line := &po.Items[i]
			lines[line.InventoryID] = append(lines[line.InventoryID], line)
		}

		touched := make(map[uint]*model.PurchaseOrderItem)
		received := make(map[uint]int)
		for _, r := range req.ReceivedItems {
			candidates, ok := lines[r.ItemID]
			if !ok {
				return apperror.NewValidationf("item %d is not on purchase order %s", r.ItemID, po.PONumber)
			}

			outstanding := 0
			for _, line := range candidates {
				outstanding += line.Outstanding()
			}
			if r.ReceivedQuantity > outstanding {
				return apperror.NewValidationf("cannot receive %d of item %d: only %d outstanding", r.ReceivedQuantity, r.ItemID, outstanding).
					WithDetail("item_id", r.ItemID).
					WithDetail("requested", r.ReceivedQuantity).
					WithDetail("outstanding", outstanding)
			}

			remaining := r.ReceivedQuantity
			for _, line := range candidates {
				if remaining == 0 {
					break
				}
				take := min(line.Outstanding(), remaining)
				if take == 0 {
					continue
				}
				line.ReceivedQuantity += take
				remaining -= take
				touched[line.ID] = line
			}
			received[r.ItemID] += r.ReceivedQuantity
		}

		for _, line := range touched {
			if err := s.poRepo.UpdateItemReceived(txCtx, line.ID, line.ReceivedQuantity); err != nil {
				return fmt.Errorf("failed to update received quantity: %w", err)
			}
		}

		// lock inventory rows in id order
		inventoryIDs := make([]uint, 0, len(received))
		for invID := range received {
			inventoryIDs = append(inventoryIDs, invID)
		}
		sort.Slice(inventoryIDs, func(i, j int) bool { return inventoryIDs[i] < inventoryIDs[j] })

		for _, invID := range inventoryIDs {
			item, err := s.inventoryRepo.FindByIDForUpdate(txCtx, invID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NewValidationf("inventory item %d does not exist", invID)
				}
				return fmt.Errorf("failed to lock inventory item %d: %w", invID, err)
			}
			previous := item.Quantity
			item.Quantity += received[invID]
			if err := s.inventoryRepo.UpdateQuantity(txCtx, invID, item.Quantity); err != nil {
				return fmt.Errorf("failed to increment stock: %w", err)
			}
			changes = append(changes, stockChange{item: *item, previous: previous})
		}

		if err := s.poRepo.UpdateStatus(txCtx, id, model.POStatusReceived); err != nil {
			return notFoundOr(err, "Purchase order", id)
		}
		return nil
	})
	if err != nil {
		return nil, passThrough(err)
	}

	logger.Info(ctx, "purchase order received",
		"purchase_order_id", id,
		"po_number", po.PONumber,
		"lines", len(req.ReceivedItems),
	)
	s.events.Publish(ws.EventPurchaseOrderReceived, map[string]any{"id": id, "po_number": po.PONumber})
	publishStockChanges(s.events, changes)
	invalidateStats(ctx, s.stats)

	return s.Get(ctx, id)
}

func (s *purchaseOrderService) UpdateStatus(ctx context.Context, id uint, status string) (*model.PurchaseOrder, error) {
	if !validation.IsPurchaseOrderStatus(status) {
		return nil, apperror.NewValidationf("invalid purchase order status %q", status)
	}
	if err := s.poRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFoundOr(err, "Purchase order", id)
	}
	invalidateStats(ctx, s.stats)
	return s.Get(ctx, id)
}

// Delete removes the order and its lines. Stock already received stays.
func (s *purchaseOrderService) Delete(ctx context.Context, id uint) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.poRepo.Delete(txCtx, id); err != nil {
			return notFoundOr(err, "Purchase order", id)
		}
		return nil
	})
	if err != nil {
		return passThrough(err)
	}
	logger.Info(ctx, "purchase order deleted", "purchase_order_id", id)
	invalidateStats(ctx, s.stats)
	return nil
}

func (s *purchaseOrderService) List(ctx context.Context, filter repository.PurchaseOrderFilter, page pagination.Params) ([]model.PurchaseOrder, error) {
	orders, err := s.poRepo.List(ctx, filter, page)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return orders, nil
}

func (s *purchaseOrderService) Get(ctx context.Context, id uint) (*model.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Purchase order", id)
	}
	return po, nil
}

func (s *purchaseOrderService) Stats(ctx context.Context, period repository.DateRange) (*model.PurchaseOrderSummary, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}
	summary, err := s.poRepo.Summary(ctx, period)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return summary, nil
}
