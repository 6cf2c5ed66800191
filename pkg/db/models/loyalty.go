package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyAccount accumulates points per customer.
type LoyaltyAccount struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerEmail string    `gorm:"column:customer_email;not null;uniqueIndex"`
	PointsBalance int64     `gorm:"column:points_balance;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LoyaltyEntry is one ledger line. OrderID carries a unique index so an
// order can accrue at most once no matter how often checkout retries.
type LoyaltyEntry struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID  `gorm:"column:account_id;type:uuid;not null"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid;uniqueIndex"`
	Points    int64      `gorm:"column:points;not null"`
	Reason    string     `gorm:"column:reason;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
