package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerType enum constants
const (
	CustomerTypeRetail    = "retail"
	CustomerTypeWholesale = "wholesale"
	CustomerTypeInsurance = "insurance"
)

// Customer buys through invoices. TotalPurchases is maintained by invoice create/delete only.
type Customer struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Email          string          `gorm:"type:varchar(255)" json:"email"`
	Phone          string          `gorm:"type:varchar(50)" json:"phone"`
	Address        string          `gorm:"type:text" json:"address"`
	CustomerType   string          `gorm:"type:varchar(20);not null;index" json:"customer_type"`
	TotalPurchases decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_purchases"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Wholesaler supplies goods through purchase orders
type Wholesaler struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(255);not null;index" json:"name"`
	ContactPerson string    `gorm:"type:varchar(255)" json:"contact_person"`
	Email         string    `gorm:"type:varchar(255)" json:"email"`
	Phone         string    `gorm:"type:varchar(50)" json:"phone"`
	Address       string    `gorm:"type:text" json:"address"`
	PaymentTerms  string    `gorm:"type:varchar(100)" json:"payment_terms"`
	Status        string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Staff is an employee record, unrelated to login users
type Staff struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Email     string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string          `gorm:"type:varchar(50)" json:"phone"`
	Position  string          `gorm:"type:varchar(100)" json:"position"`
	Salary    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"salary"`
	HireDate  *Date           `json:"hire_date"`
	Status    string          `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Staff) TableName() string {
	return "staff"
}
