package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *model.Staff) error
	Update(ctx context.Context, staff *model.Staff) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Staff, error)
	List(ctx context.Context, filter ContactFilter, page pagination.Params) ([]model.Staff, error)
}

type staffRepository struct {
	crudRepository[model.Staff]
}

func NewStaffRepository(db *gorm.DB) StaffRepository {
	return &staffRepository{crudRepository[model.Staff]{db: db}}
}

func (r *staffRepository) List(ctx context.Context, filter ContactFilter, page pagination.Params) ([]model.Staff, error) {
	f := query.New().
		Search(filter.Search, "name", "email", "phone").
		EqIfSet("status", filter.Kind)
	return r.list(ctx, f, page, "name ASC")
}
