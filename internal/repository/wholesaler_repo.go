package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

type WholesalerRepository interface {
	Create(ctx context.Context, wholesaler *model.Wholesaler) error
	Update(ctx context.Context, wholesaler *model.Wholesaler) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Wholesaler, error)
	List(ctx context.Context, filter ContactFilter, page pagination.Params) ([]model.Wholesaler, error)
	HasPurchaseOrders(ctx context.Context, id uint) (bool, error)
}

type wholesalerRepository struct {
	crudRepository[model.Wholesaler]
}

func NewWholesalerRepository(db *gorm.DB) WholesalerRepository {
	return &wholesalerRepository{crudRepository[model.Wholesaler]{db: db}}
}

func (r *wholesalerRepository) List(ctx context.Context, filter ContactFilter, page pagination.Params) ([]model.Wholesaler, error) {
	f := query.New().
		Search(filter.Search, "name", "contact_person", "email", "phone").
		EqIfSet("status", filter.Kind)
	return r.list(ctx, f, page, "name ASC")
}

func (r *wholesalerRepository) HasPurchaseOrders(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, GetDB(ctx, r.db), "purchase_orders", "wholesaler_id", id)
}
