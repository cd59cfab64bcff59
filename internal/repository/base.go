package repository

import (
	"context"

	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

// crudRepository provides the single-table operations every resource shares.
// Embed it in entity repositories.
type crudRepository[T any] struct {
	db *gorm.DB
}

func (r *crudRepository[T]) Create(ctx context.Context, entity *T) error {
	return GetDB(ctx, r.db).Create(entity).Error
}

// Update overwrites every column of the row
func (r *crudRepository[T]) Update(ctx context.Context, entity *T) error {
	return GetDB(ctx, r.db).Save(entity).Error
}

// updateExcept overwrites every column of the row but the named ones
func (r *crudRepository[T]) updateExcept(ctx context.Context, entity *T, columns ...string) error {
	return GetDB(ctx, r.db).Model(entity).Select("*").Omit(columns...).Updates(entity).Error
}

// Delete removes the row; gorm.ErrRecordNotFound when nothing matched
func (r *crudRepository[T]) Delete(ctx context.Context, id uint) error {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *crudRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *crudRepository[T]) FindByIDForUpdate(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := forUpdate(GetDB(ctx, r.db)).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// list runs a filtered, ordered and optionally paginated query
func (r *crudRepository[T]) list(ctx context.Context, f *query.Filter, page pagination.Params, order string) ([]T, error) {
	db, err := f.Apply(GetDB(ctx, r.db).Model(new(T)))
	if err != nil {
		return nil, err
	}

	rows := make([]T, 0)
	if err := paginate(db, page).Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func paginate(db *gorm.DB, page pagination.Params) *gorm.DB {
	if !page.Enabled() {
		return db
	}
	return db.Offset(page.Offset).Limit(page.Limit)
}

// exists reports whether any row of table matches column = value
func exists(ctx context.Context, db *gorm.DB, table, column string, value any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Table(table).Where(column+" = ?", value).Limit(1).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
