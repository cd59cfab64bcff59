package repository

import (
	"context"

	"medshop/internal/model"
	"medshop/pkg/pagination"
	"medshop/pkg/query"

	"gorm.io/gorm"
)

// InvoiceFilter narrows the invoice list; dates are inclusive bounds on invoice_date
type InvoiceFilter struct {
	Status     string
	CustomerID *uint
	StartDate  *model.Date
	EndDate    *model.Date
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	CreateItem(ctx context.Context, item *model.InvoiceItem) error
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter, page pagination.Params) ([]model.Invoice, error)
	Recent(ctx context.Context, limit int) ([]model.Invoice, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	Summary(ctx context.Context, period DateRange, today model.Date) (*model.InvoiceSummary, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Items").Create(invoice).Error
}

func (r *invoiceRepository) CreateItem(ctx context.Context, item *model.InvoiceItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *invoiceRepository) withCustomer(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).
		Select("invoices.*, customers.name AS customer_name").
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id")
}

func preloadInvoiceItems(db *gorm.DB) *gorm.DB {
	return db.Select("invoice_items.*, inventory.name AS item_name, inventory.sku AS item_sku").
		Joins("LEFT JOIN inventory ON inventory.id = invoice_items.inventory_id").
		Order("invoice_items.id ASC")
}

// FindByID loads the invoice with customer name and its items
func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := r.withCustomer(ctx).
		Preload("Items", preloadInvoiceItems).
		Where("invoices.id = ?", id).
		First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForUpdate locks the invoice row and loads its plain items
func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := forUpdate(GetDB(ctx, r.db)).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		First(&invoice).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceFilter, page pagination.Params) ([]model.Invoice, error) {
	f := query.New().EqIfSet("invoices.status", filter.Status)
	if filter.CustomerID != nil {
		f.Eq("invoices.customer_id", *filter.CustomerID)
	}
	if filter.StartDate != nil {
		f.Gte("invoices.invoice_date", *filter.StartDate)
	}
	if filter.EndDate != nil {
		f.Lte("invoices.invoice_date", *filter.EndDate)
	}

	db, err := f.Apply(r.withCustomer(ctx))
	if err != nil {
		return nil, err
	}

	invoices := make([]model.Invoice, 0)
	if err := paginate(db, page).
		Order("invoices.invoice_date DESC").Order("invoices.id DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Recent returns the latest created invoices
func (r *invoiceRepository) Recent(ctx context.Context, limit int) ([]model.Invoice, error) {
	invoices := make([]model.Invoice, 0, limit)
	err := r.withCustomer(ctx).
		Order("invoices.created_at DESC").Order("invoices.id DESC").
		Limit(limit).
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the invoice and its items
func (r *invoiceRepository) Delete(ctx context.Context, id uint) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Summary counts invoices per status within the invoice_date range; pending
// invoices past due count as overdue
func (r *invoiceRepository) Summary(ctx context.Context, period DateRange, today model.Date) (*model.InvoiceSummary, error) {
	var summary model.InvoiceSummary
	db := withinPeriod(GetDB(ctx, r.db).Model(&model.Invoice{}), "invoice_date", period)
	err := db.
		Select(`COUNT(*) AS total_invoices,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_invoices,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid_invoices,
			COALESCE(SUM(CASE WHEN status = ? OR (status = ? AND due_date IS NOT NULL AND due_date < ?) THEN 1 ELSE 0 END), 0) AS overdue_invoices,
			COALESCE(SUM(total_amount), 0) AS total_revenue,
			COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS paid_revenue`,
			model.InvoiceStatusPending,
			model.InvoiceStatusPaid,
			model.InvoiceStatusOverdue, model.InvoiceStatusPending, today,
			model.InvoiceStatusPaid).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	summary.TotalRevenue = summary.TotalRevenue.Round(2)
	summary.PaidRevenue = summary.PaidRevenue.Round(2)
	return &summary, nil
}
