package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

// InventoryFilter narrows the inventory list
type InventoryFilter struct {
	Search     string
	CategoryID *uint
	Status     string
	LowStock   bool
}

type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	Update(ctx context.Context, item *model.InventoryItem) error
	UpdateDetails(ctx context.Context, item *model.InventoryItem) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.InventoryItem, error)
	List(ctx context.Context, filter InventoryFilter, page pagination.Params) ([]model.InventoryItem, error)
	ListLowStock(ctx context.Context) ([]model.InventoryItem, error)
	ListExpiring(ctx context.Context, cutoff model.Date) ([]model.InventoryItem, error)
	UpdateQuantity(ctx context.Context, id uint, quantity int) error
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

type inventoryRepository struct {
	crudRepository[model.InventoryItem]
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{crudRepository[model.InventoryItem]{db: db}}
}

// withCategory selects inventory columns plus the joined category name
func (r *inventoryRepository) withCategory(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).Model(&model.InventoryItem{}).
		Select("inventory.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = inventory.category_id")
}

func (r *inventoryRepository) FindByID(ctx context.Context, id uint) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := r.withCategory(ctx).Where("inventory.id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context, filter InventoryFilter, page pagination.Params) ([]model.InventoryItem, error) {
	f := query.New().
		Search(filter.Search, "inventory.name", "inventory.generic_name", "inventory.barcode", "inventory.sku").
		EqIfSet("inventory.status", filter.Status)
	if filter.CategoryID != nil {
		f.Eq("inventory.category_id", *filter.CategoryID)
	}
	if filter.LowStock {
		f.Expr("inventory.quantity <= inventory.reorder_level")
	}

	db, err := f.Apply(r.withCategory(ctx))
	if err != nil {
		return nil, err
	}

	items := make([]model.InventoryItem, 0)
	if err := paginate(db, page).Order("inventory.name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inventoryRepository) ListLowStock(ctx context.Context) ([]model.InventoryItem, error) {
	items := make([]model.InventoryItem, 0)
	err := r.withCategory(ctx).
		Where("inventory.quantity <= inventory.reorder_level AND inventory.status = ?", model.StatusActive).
		Order("inventory.quantity ASC").Order("inventory.name ASC").
		Find(&items).Error
	return items, err
}

func (r *inventoryRepository) ListExpiring(ctx context.Context, cutoff model.Date) ([]model.InventoryItem, error) {
	f := query.New().
		NotNull("inventory.expiry_date").
		Lte("inventory.expiry_date", cutoff).
		Eq("inventory.status", model.StatusActive)

	db, err := f.Apply(r.withCategory(ctx))
	if err != nil {
		return nil, err
	}

	items := make([]model.InventoryItem, 0)
	if err := db.Order("inventory.expiry_date ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateDetails writes every column except quantity, which only locked stock paths change
func (r *inventoryRepository) UpdateDetails(ctx context.Context, item *model.InventoryItem) error {
	return r.updateExcept(ctx, item, "quantity")
}

func (r *inventoryRepository) UpdateQuantity(ctx context.Context, id uint, quantity int) error {
	return GetDB(ctx, r.db).Model(&model.InventoryItem{}).Where("id = ?", id).Update("quantity", quantity).Error
}

// IsReferenced reports whether any invoice or purchase order line points at the item
func (r *inventoryRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	db := GetDB(ctx, r.db)
	used, err := exists(ctx, db, "invoice_items", "inventory_id", id)
	if err != nil || used {
		return used, err
	}
	return exists(ctx, db, "purchase_order_items", "inventory_id", id)
}
