package repository

import (
	"context"
	"fmt"

	"medshop/internal/model"

	"gorm.io/gorm"
)

// DateRange bounds document dates inclusively; either end may be nil
type DateRange struct {
	Start *model.Date
	End   *model.Date
}

// Inverted reports whether the range ends before it starts
func (p DateRange) Inverted() bool {
	return p.Start != nil && p.End != nil && p.End.Before(p.Start.Time)
}

type DashboardRepository interface {
	InventoryStats(ctx context.Context, expiryCutoff model.Date) (model.InventoryStats, error)
	SalesStats(ctx context.Context, period DateRange) (model.SalesStats, error)
	PurchaseStats(ctx context.Context, period DateRange) (model.PurchaseStats, error)
	CustomerStats(ctx context.Context) (model.CustomerStats, error)
}

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func withinPeriod(db *gorm.DB, column string, period DateRange) *gorm.DB {
	if period.Start != nil {
		db = db.Where(column+" >= ?", *period.Start)
	}
	if period.End != nil {
		db = db.Where(column+" <= ?", *period.End)
	}
	return db
}

func (r *dashboardRepository) InventoryStats(ctx context.Context, expiryCutoff model.Date) (model.InventoryStats, error) {
	var stats model.InventoryStats
	err := GetDB(ctx, r.db).Table("inventory").
		Select(`COUNT(*) AS total_items,
			COALESCE(SUM(quantity), 0) AS total_stock,
			COALESCE(SUM(CASE WHEN quantity <= reorder_level THEN 1 ELSE 0 END), 0) AS low_stock_items,
			COALESCE(SUM(CASE WHEN expiry_date IS NOT NULL AND expiry_date <= ? THEN 1 ELSE 0 END), 0) AS expiring_items`,
			expiryCutoff).
		Where("status = ?", model.StatusActive).
		Scan(&stats).Error
	if err != nil {
		return stats, fmt.Errorf("failed to query inventory stats: %w", err)
	}
	return stats, nil
}

func (r *dashboardRepository) SalesStats(ctx context.Context, period DateRange) (model.SalesStats, error) {
	var stats model.SalesStats
	db := GetDB(ctx, r.db).Table("invoices").
		Select(`COUNT(*) AS total_invoices,
			COALESCE(SUM(total_amount), 0) AS total_revenue,
			COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) AS paid_revenue`,
			model.InvoiceStatusPaid)
	if err := withinPeriod(db, "invoice_date", period).Scan(&stats).Error; err != nil {
		return stats, fmt.Errorf("failed to query sales stats: %w", err)
	}
	stats.TotalRevenue = stats.TotalRevenue.Round(2)
	stats.PaidRevenue = stats.PaidRevenue.Round(2)
	return stats, nil
}

func (r *dashboardRepository) PurchaseStats(ctx context.Context, period DateRange) (model.PurchaseStats, error) {
	var stats model.PurchaseStats
	db := GetDB(ctx, r.db).Table("purchase_orders").
		Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(total_amount), 0) AS total_purchases,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_orders`,
			model.POStatusPending)
	if err := withinPeriod(db, "order_date", period).Scan(&stats).Error; err != nil {
		return stats, fmt.Errorf("failed to query purchase stats: %w", err)
	}
	stats.TotalPurchases = stats.TotalPurchases.Round(2)
	return stats, nil
}

func (r *dashboardRepository) CustomerStats(ctx context.Context) (model.CustomerStats, error) {
	var stats model.CustomerStats
	if err := GetDB(ctx, r.db).Model(&model.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return stats, fmt.Errorf("failed to count customers: %w", err)
	}
	return stats, nil
}
