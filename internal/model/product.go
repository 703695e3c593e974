package model

import (
	"time"
)

// Product is a stock-keeping unit: a name plus an integer stock count.
// Name carries no DB unique constraint; uniqueness is best-effort and
// enforced at the service layer via idempotent create-by-name.
type Product struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:155;index;not null"`
	Stock     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
}
