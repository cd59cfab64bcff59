package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats is the aggregate report shown on the dashboard
type DashboardStats struct {
	Inventory InventoryStats `json:"inventory"`
	Sales     SalesStats     `json:"sales"`
	Purchases PurchaseStats  `json:"purchases"`
	Customers CustomerStats  `json:"customers"`
}

// InventoryStats covers active items only
type InventoryStats struct {
	TotalItems    int64 `json:"total_items"`
	TotalStock    int64 `json:"total_stock"`
	LowStockItems int64 `json:"low_stock_items"`
	ExpiringItems int64 `json:"expiring_items"`
}

type SalesStats struct {
	TotalInvoices int64           `json:"total_invoices"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	PaidRevenue   decimal.Decimal `json:"paid_revenue"`
}

type PurchaseStats struct {
	TotalOrders    int64           `json:"total_orders"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	PendingOrders  int64           `json:"pending_orders"`
}

type CustomerStats struct {
	TotalCustomers int64 `json:"total_customers"`
}

// Activity types in the recent activity feed
const (
	ActivityInvoice       = "invoice"
	ActivityPurchaseOrder = "purchase_order"
)

// Activity is one entry of the recent activity feed
type Activity struct {
	Type        string          `json:"type"`
	ID          uint            `json:"id"`
	Number      string          `json:"number"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InvoiceSummary backs GET /api/invoices/stats/summary
type InvoiceSummary struct {
	TotalInvoices   int64           `json:"total_invoices"`
	PendingInvoices int64           `json:"pending_invoices"`
	PaidInvoices    int64           `json:"paid_invoices"`
	OverdueInvoices int64           `json:"overdue_invoices"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	PaidRevenue     decimal.Decimal `json:"paid_revenue"`
}

// PurchaseOrderSummary backs GET /api/purchase-orders/stats/summary
type PurchaseOrderSummary struct {
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	ConfirmedOrders int64           `json:"confirmed_orders"`
	ReceivedOrders  int64           `json:"received_orders"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

// BillSummary backs GET /api/bills/stats/summary
type BillSummary struct {
	TotalBills    int64           `json:"total_bills"`
	PendingBills  int64           `json:"pending_bills"`
	PaidBills     int64           `json:"paid_bills"`
	OverdueBills  int64           `json:"overdue_bills"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}
