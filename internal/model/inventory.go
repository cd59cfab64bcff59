package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record status shared by inventory, wholesalers and staff
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultReorderLevel applies when an item is created without one
const DefaultReorderLevel = 10

// Category groups inventory items (Antibiotics, Vitamins, ...)
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InventoryItem is a stocked medicine or product. Quantity is the on-hand stock
// and is only changed under a row lock.
type InventoryItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(255);not null;index" json:"name"`
	GenericName  string          `gorm:"type:varchar(255)" json:"generic_name"`
	CategoryID   *uint           `gorm:"index" json:"category_id"`
	CategoryName string          `gorm:"->;-:migration" json:"category_name,omitempty"`
	Manufacturer string          `gorm:"type:varchar(255)" json:"manufacturer"`
	Strength     string          `gorm:"type:varchar(100)" json:"strength"`
	DosageForm   string          `gorm:"type:varchar(100)" json:"dosage_form"`
	PackSize     string          `gorm:"type:varchar(100)" json:"pack_size"`
	Barcode      *string         `gorm:"type:varchar(100);uniqueIndex" json:"barcode"`
	SKU          string          `gorm:"column:sku;type:varchar(100);uniqueIndex;not null" json:"sku"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"selling_price"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	ReorderLevel int             `gorm:"not null" json:"reorder_level"`
	ExpiryDate   *Date           `gorm:"index" json:"expiry_date"`
	Location     string          `gorm:"type:varchar(255)" json:"location"`
	Status       string          `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory"
}

// IsLowStock reports whether the item is at or below its reorder level
func (i InventoryItem) IsLowStock() bool {
	return i.Quantity <= i.ReorderLevel
}
