package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

// PurchaseOrderFilter narrows the purchase order list; dates bound order_date
type PurchaseOrderFilter struct {
	Status       string
	WholesalerID *uint
	StartDate    *model.Date
	EndDate      *model.Date
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	CreateItem(ctx context.Context, item *model.PurchaseOrderItem) error
	FindByID(ctx context.Context, id uint) (*model.PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderFilter, page pagination.Params) ([]model.PurchaseOrder, error)
	Recent(ctx context.Context, limit int) ([]model.PurchaseOrder, error)
	UpdateItemReceived(ctx context.Context, itemID uint, received int) error
	UpdateStatus(ctx context.Context, id uint, status string) error
	Delete(ctx context.Context, id uint) error
	Summary(ctx context.Context, period DateRange) (*model.PurchaseOrderSummary, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Omit("Items").Create(po).Error
}

func (r *purchaseOrderRepository) CreateItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *purchaseOrderRepository) withWholesaler(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).
		Select(`purchase_orders.*, wholesalers.name AS wholesaler_name,
			(SELECT COUNT(*) FROM purchase_order_items poi WHERE poi.purchase_order_id = purchase_orders.id) AS item_count`).
		Joins("LEFT JOIN wholesalers ON wholesalers.id = purchase_orders.wholesaler_id")
}

func preloadPurchaseOrderItems(db *gorm.DB) *gorm.DB {
	return db.Select("purchase_order_items.*, inventory.name AS item_name, inventory.sku AS item_sku").
		Joins("LEFT JOIN inventory ON inventory.id = purchase_order_items.inventory_id").
		Order("purchase_order_items.id ASC")
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uint) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := r.withWholesaler(ctx).
		Preload("Items", preloadPurchaseOrderItems).
		Where("purchase_orders.id = ?", id).
		First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

// FindByIDForUpdate locks the purchase order row and loads its plain items
func (r *purchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	if err := forUpdate(GetDB(ctx, r.db)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderFilter, page pagination.Params) ([]model.PurchaseOrder, error) {
	f := query.New().EqIfSet("purchase_orders.status", filter.Status)
	if filter.WholesalerID != nil {
		f.Eq("purchase_orders.wholesaler_id", *filter.WholesalerID)
	}
	if filter.StartDate != nil {
		f.Gte("purchase_orders.order_date", *filter.StartDate)
	}
	if filter.EndDate != nil {
		f.Lte("purchase_orders.order_date", *filter.EndDate)
	}

	db, err := f.Apply(r.withWholesaler(ctx))
	if err != nil {
		return nil, err
	}

	orders := make([]model.PurchaseOrder, 0)
	if err := paginate(db, page).
		Order("purchase_orders.order_date DESC").Order("purchase_orders.id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *purchaseOrderRepository) Recent(ctx context.Context, limit int) ([]model.PurchaseOrder, error) {
	orders := make([]model.PurchaseOrder, 0, limit)
	err := r.withWholesaler(ctx).
		Order("purchase_orders.created_at DESC").Order("purchase_orders.id DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *purchaseOrderRepository) UpdateItemReceived(ctx context.Context, itemID uint, received int) error {
	return GetDB(ctx, r.db).Model(&model.PurchaseOrderItem{}).
		Where("id = ?", itemID).
		Update("received_quantity", received).Error
}

func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the purchase order and its items
func (r *purchaseOrderRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("purchase_order_id = ?", id).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.PurchaseOrder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *purchaseOrderRepository) Summary(ctx context.Context, period DateRange) (*model.PurchaseOrderSummary, error) {
	var summary model.PurchaseOrderSummary
	db := withinPeriod(GetDB(ctx, r.db).Model(&model.PurchaseOrder{}), "order_date", period)
	err := db.
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_orders,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS confirmed_orders,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS received_orders,
			COALESCE(SUM(total_amount), 0) AS total_value`,
			model.POStatusPending, model.POStatusConfirmed, model.POStatusReceived).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	summary.TotalValue = summary.TotalValue.Round(2)
	return &summary, nil
}
