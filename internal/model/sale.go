package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale records a completed sale of one product.
//
// ProductID is a weak reference: the product may be deleted later, in which
// case the column is nulled and ProductName keeps the display value.
// SalePrice and NetProfit are derived (unit price, profit after costs) and
// recomputed by the sales service on every create and edit.
type Sale struct {
	ID          uint  `gorm:"primaryKey;autoIncrement"`
	ProductID   *uint `gorm:"index"`
	ProductName string          `gorm:"size:155;not null"`
	Quantity    int             `gorm:"not null"`
	TotalSale   decimal.Decimal `gorm:"type:decimal(14,2);not null;column:total_sale_price"`
	TotalCost   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ExtraCost   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(14,4);not null"`
	NetProfit   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Date        string          `gorm:"size:32;not null"`
	CreatedAt   time.Time
}
