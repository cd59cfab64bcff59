package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus enum constants
const (
	POStatusPending   = "pending"
	POStatusConfirmed = "confirmed"
	POStatusShipped   = "shipped"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

var PurchaseOrderStatuses = []string{
	POStatusPending,
	POStatusConfirmed,
	POStatusShipped,
	POStatusReceived,
	POStatusCancelled,
}

// PurchaseOrder is a procurement document sent to a wholesaler
type PurchaseOrder struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	PONumber         string              `gorm:"column:po_number;type:varchar(50);uniqueIndex;not null" json:"po_number"`
	WholesalerID     uint                `gorm:"not null;index" json:"wholesaler_id"`
	WholesalerName   string              `gorm:"->;-:migration" json:"wholesaler_name"`
	ItemCount        int                 `gorm:"->;-:migration" json:"item_count"`
	OrderDate        Date                `gorm:"not null;index" json:"order_date"`
	ExpectedDelivery *Date               `json:"expected_delivery"`
	TotalAmount      decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status           string              `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes            string              `gorm:"type:text" json:"notes"`
	CreatedBy        *uint               `json:"created_by"`
	Items            []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID" json:"items,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// PurchaseOrderItem is an ordered line. ReceivedQuantity only grows and never exceeds Quantity.
type PurchaseOrderItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	PurchaseOrderID  uint            `gorm:"not null;index" json:"purchase_order_id"`
	InventoryID      uint            `gorm:"not null;index" json:"inventory_id"`
	ItemName         string          `gorm:"->;-:migration" json:"item_name,omitempty"`
	ItemSKU          string          `gorm:"column:item_sku;->;-:migration" json:"sku,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_cost"`
	TotalCost        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_cost"`
	ReceivedQuantity int             `gorm:"not null;default:0" json:"received_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Outstanding is the quantity still expected from the wholesaler
func (i PurchaseOrderItem) Outstanding() int {
	return i.Quantity - i.ReceivedQuantity
}
