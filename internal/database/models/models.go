package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin  = "admin"
	RoleSeller = "seller"
)

const (
	PaymentCash    = "cash"
	PaymentPartial = "partial"
	PaymentCredit  = "credit"
)

const (
	TransactionDebt    = "debt"
	TransactionPayment = "payment"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	Role         string    `gorm:"size:20;not null;default:seller" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Customer carries no balance column. The balance is always derived from the
// customer's debt transactions so it cannot drift from the ledger.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Product stock is only mutated by settlement, unpack and write-off
// operations, never edited to reflect a sale.
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Stock          int             `gorm:"not null;default:0" json:"stock"`
	PriceWholesale decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_wholesale"`
	PriceRetail    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price_retail"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Sale struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CustomerID  *uint           `gorm:"index" json:"customer_id"`
	Customer    *Customer       `json:"customer,omitempty"`
	SaleDate    time.Time       `gorm:"index;not null" json:"sale_date"`
	Total       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"paid_amount"`
	DueAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"due_amount"`
	PaymentType string          `gorm:"size:20;not null;default:cash" json:"payment_type"`
	Notes       string          `gorm:"type:text" json:"notes"`
	Items       []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
}

// SaleItem snapshots the wholesale price into CostPrice at sale time so later
// price edits on the product do not rewrite historical profit.
type SaleItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"index;not null" json:"sale_id"`
	ProductID uint            `gorm:"not null" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	Qty       int             `gorm:"not null" json:"qty"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cost_price"`
}

// DebtTransaction is the append-only ledger. A customer's balance is the sum
// of debt rows minus the sum of payment rows.
type DebtTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CustomerID  uint            `gorm:"index;not null" json:"customer_id"`
	SaleID      *uint           `json:"sale_id"`
	Date        time.Time       `gorm:"index;not null" json:"date"`
	Type        string          `gorm:"column:transaction_type;size:20;not null" json:"transaction_type"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description string          `gorm:"type:text" json:"description"`
}

// DamagedProduct is an append-only write-off log. It never touches the debt
// ledger or sale totals.
type DamagedProduct struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Notes     string    `gorm:"type:text" json:"notes"`
}
