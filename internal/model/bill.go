package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillStatus enum constants
const (
	BillStatusPending = "pending"
	BillStatusPaid    = "paid"
	BillStatusOverdue = "overdue"
)

var BillStatuses = []string{BillStatusPending, BillStatusPaid, BillStatusOverdue}

// Bill records an operating expense (rent, utilities, vendor services)
type Bill struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	BillNumber    string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"bill_number"`
	BillDate      Date            `gorm:"not null;index" json:"bill_date"`
	VendorName    string          `gorm:"type:varchar(255)" json:"vendor_name"`
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	Description   string          `gorm:"type:text" json:"description"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentMethod string          `gorm:"type:varchar(50)" json:"payment_method"`
	DueDate       *Date           `json:"due_date"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     *uint           `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
