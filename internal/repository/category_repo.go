package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	IsReferenced(ctx context.Context, id uint) (bool, error)
}

type categoryRepository struct {
	crudRepository[model.Category]
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{crudRepository[model.Category]{db: db}}
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	return r.list(ctx, query.New(), pagination.Params{}, "name ASC")
}

// IsReferenced reports whether inventory items still belong to the category
func (r *categoryRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	return exists(ctx, GetDB(ctx, r.db), "inventory", "category_id", id)
}
