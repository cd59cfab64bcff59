package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

// BillFilter narrows the bill list; dates are inclusive bounds on bill_date
type BillFilter struct {
	Status    string
	Category  string
	StartDate *model.Date
	EndDate   *model.Date
}

type BillRepository interface {
	Create(ctx context.Context, bill *model.Bill) error
	Update(ctx context.Context, bill *model.Bill) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Bill, error)
	List(ctx context.Context, filter BillFilter, page pagination.Params) ([]model.Bill, error)
	Summary(ctx context.Context, period DateRange) (*model.BillSummary, error)
}

type billRepository struct {
	crudRepository[model.Bill]
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{crudRepository[model.Bill]{db: db}}
}

func (r *billRepository) List(ctx context.Context, filter BillFilter, page pagination.Params) ([]model.Bill, error) {
	f := query.New().
		EqIfSet("payment_status", filter.Status).
		EqIfSet("category", filter.Category)
	if filter.StartDate != nil {
		f.Gte("bill_date", *filter.StartDate)
	}
	if filter.EndDate != nil {
		f.Lte("bill_date", *filter.EndDate)
	}
	return r.list(ctx, f, page, "bill_date DESC, id DESC")
}

func (r *billRepository) Summary(ctx context.Context, period DateRange) (*model.BillSummary, error) {
	var summary model.BillSummary
	db := withinPeriod(GetDB(ctx, r.db).Model(&model.Bill{}), "bill_date", period)
	err := db.
		Select(`COUNT(*) AS total_bills,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0) AS pending_bills,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0) AS paid_bills,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN 1 ELSE 0 END), 0) AS overdue_bills,
			COALESCE(SUM(amount), 0) AS total_amount,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN amount ELSE 0 END), 0) AS paid_amount,
			COALESCE(SUM(CASE WHEN payment_status = ? THEN amount ELSE 0 END), 0) AS pending_amount`,
			model.BillStatusPending, model.BillStatusPaid, model.BillStatusOverdue,
			model.BillStatusPaid, model.BillStatusPending).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	summary.TotalAmount = summary.TotalAmount.Round(2)
	summary.PaidAmount = summary.PaidAmount.Round(2)
	summary.PendingAmount = summary.PendingAmount.Round(2)
	return &summary, nil
}
