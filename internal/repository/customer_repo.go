package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContactFilter narrows customer, wholesaler and staff lists.
// Kind is the customer_type for customers and the status for the others.
type ContactFilter struct {
	Search string
	Kind   string
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Customer, error)
	List(ctx context.Context, filter ContactFilter, page pagination.Params) ([]model.Customer, error)
	SetTotalPurchases(ctx context.Context, id uint, total decimal.Decimal) error
	HasInvoices(ctx context.Context, id uint) (bool, error)
}

type customerRepository struct {
	crudRepository[model.Customer]
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{crudRepository[model.Customer]{db: db}}
}

func (r *customerRepository) List(ctx context.Context, filter ContactFilter, page pagination.Params) ([]model.Customer, error) {
	f := query.New().
		Search(filter.Search, "name", "email", "phone").
		EqIfSet("customer_type", filter.Kind)
	return r.list(ctx, f, page, "name ASC")
}

// Update writes the profile columns. total_purchases belongs to SetTotalPurchases.
func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return r.updateExcept(ctx, customer, "total_purchases")
}

func (r *customerRepository) SetTotalPurchases(ctx context.Context, id uint, total decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Customer{}).Where("id = ?", id).Update("total_purchases", total).Error
}

func (r *customerRepository) HasInvoices(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, GetDB(ctx, r.db), "invoices", "customer_id", id)
}
