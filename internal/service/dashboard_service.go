package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"medshop/internal/apperror"
	"medshop/internal/cache"
	"medshop/internal/model"
	"medshop/internal/repository"
	"medshop/pkg/logger"
)

const (
	dashboardExpiryWindow = 30
	recentPerSource       = 5
	recentActivityLimit   = 10
)

type DashboardService interface {
	GetStats(ctx context.Context, period repository.DateRange) (*model.DashboardStats, error)
	RecentActivity(ctx context.Context) ([]model.Activity, error)
}

type dashboardService struct {
	dashboardRepo repository.DashboardRepository
	invoiceRepo   repository.InvoiceRepository
	poRepo        repository.PurchaseOrderRepository
	cache         cache.Cache
	now           func() time.Time
}

func NewDashboardService(
	dashboardRepo repository.DashboardRepository,
	invoiceRepo repository.InvoiceRepository,
	poRepo repository.PurchaseOrderRepository,
	statsCache cache.Cache,
) DashboardService {
	if statsCache == nil {
		statsCache = cache.Noop{}
	}
	return &dashboardService{
		dashboardRepo: dashboardRepo,
		invoiceRepo:   invoiceRepo,
		poRepo:        poRepo,
		cache:         statsCache,
		now:           time.Now,
	}
}

func statsCacheKey(generation int64, period repository.DateRange, today model.Date) string {
	bound := func(d *model.Date) string {
		if d == nil {
			return "-"
		}
		return d.String()
	}
	// the expiring count depends on the current day
	return fmt.Sprintf("stats:g%d:%s:%s:%s", generation, bound(period.Start), bound(period.End), today)
}

// GetStats aggregates inventory, sales, purchase and customer figures.
// Sales and purchases are restricted to the period when one is given.
func (s *dashboardService) GetStats(ctx context.Context, period repository.DateRange) (*model.DashboardStats, error) {
	if err := checkPeriod(period); err != nil {
		return nil, err
	}

	today := model.NewDate(s.now())

	// the generation is read before aggregating, so a mutation that commits
	// mid-computation moves readers to a key this result is never stored under
	generation, err := s.cache.Generation(ctx)
	cacheable := err == nil
	if err != nil {
		logger.Warn(ctx, "dashboard cache generation read failed", "error", err)
	}
	key := statsCacheKey(generation, period, today)

	if cacheable {
		var cached model.DashboardStats
		if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
			logger.Warn(ctx, "dashboard cache read failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	var stats model.DashboardStats
	if stats.Inventory, err = s.dashboardRepo.InventoryStats(ctx, today.AddDays(dashboardExpiryWindow)); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	if stats.Sales, err = s.dashboardRepo.SalesStats(ctx, period); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	if stats.Purchases, err = s.dashboardRepo.PurchaseStats(ctx, period); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	if stats.Customers, err = s.dashboardRepo.CustomerStats(ctx); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, key, stats); err != nil {
			logger.Warn(ctx, "dashboard cache write failed", "error", err)
		}
	}
	return &stats, nil
}

// RecentActivity merges the latest invoices and purchase orders, newest document date first
func (s *dashboardService) RecentActivity(ctx context.Context) ([]model.Activity, error) {
	invoices, err := s.invoiceRepo.Recent(ctx, recentPerSource)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}
	orders, err := s.poRepo.Recent(ctx, recentPerSource)
	if err != nil {
		return nil, apperror.NewDatabase(err)
	}

	activities := make([]model.Activity, 0, len(invoices)+len(orders))
	for _, inv := range invoices {
		activities = append(activities, model.Activity{
			Type:        model.ActivityInvoice,
			ID:          inv.ID,
			Number:      inv.InvoiceNumber,
			Amount:      inv.TotalAmount,
			Date:        inv.InvoiceDate,
			Status:      inv.Status,
			Description: fmt.Sprintf("Invoice %s created", inv.InvoiceNumber),
			CreatedAt:   inv.CreatedAt,
		})
	}
	for _, po := range orders {
		activities = append(activities, model.Activity{
			Type:        model.ActivityPurchaseOrder,
			ID:          po.ID,
			Number:      po.PONumber,
			Amount:      po.TotalAmount,
			Date:        po.OrderDate,
			Status:      po.Status,
			Description: fmt.Sprintf("Purchase order %s created", po.PONumber),
			CreatedAt:   po.CreatedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		a, b := activities[i], activities[j]
		if !a.Date.Equal(b.Date.Time) {
			return a.Date.After(b.Date.Time)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	if len(activities) > recentActivityLimit {
		activities = activities[:recentActivityLimit]
	}
	return activities, nil
}
