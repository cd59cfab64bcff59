package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus enum constants
const (
	InvoiceStatusPending   = "pending"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
	InvoiceStatusOverdue   = "overdue"
)

// InvoiceStatuses lists every storable invoice status
var InvoiceStatuses = []string{
	InvoiceStatusPending,
	InvoiceStatusPaid,
	InvoiceStatusCancelled,
	InvoiceStatusOverdue,
}

// Invoice is a sales document. TotalAmount = Subtotal + TaxAmount - DiscountAmount.
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"invoice_number"`
	CustomerID     uint            `gorm:"not null;index" json:"customer_id"`
	CustomerName   string          `gorm:"->;-:migration" json:"customer_name"`
	InvoiceDate    Date            `gorm:"not null;index" json:"invoice_date"`
	DueDate        *Date           `json:"due_date"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status         string          `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod  string          `gorm:"type:varchar(50)" json:"payment_method"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedBy      *uint           `json:"created_by"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// IsOverdue derives overdue state at read time: pending and past its due date
func (i Invoice) IsOverdue(today Date) bool {
	return i.Status == InvoiceStatusPending && i.DueDate != nil && i.DueDate.Before(today.Time)
}

// InvoiceItem is a line of an invoice, owned by it
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	InventoryID uint            `gorm:"not null;index" json:"inventory_id"`
	ItemName    string          `gorm:"->;-:migration" json:"item_name,omitempty"`
	ItemSKU     string          `gorm:"column:item_sku;->;-:migration" json:"sku,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}
