package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a catalog listing (dental/orthodontic supplies).
// The shipping_* columns feed the package calculator; any of them may be
// NULL when the catalog import lacked the data, in which case the
// calculator falls back to profile-keyed defaults and counts the gap.
type Product struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU              string         `gorm:"column:sku;not null;uniqueIndex"`
	Name             string         `gorm:"column:name;not null"`
	Description      *string        `gorm:"column:description"`
	Category         string         `gorm:"column:category;not null"`
	Tags             pq.StringArray `gorm:"column:tags;type:text[]"`
	PriceCents       int            `gorm:"column:price_cents;not null"`
	IsActive         bool           `gorm:"column:is_active;not null;default:true"`
	ShippingWeightG  *float64       `gorm:"column:shipping_weight_g"`
	ShippingLengthCM *float64       `gorm:"column:shipping_length_cm"`
	ShippingWidthCM  *float64       `gorm:"column:shipping_width_cm"`
	ShippingHeightCM *float64       `gorm:"column:shipping_height_cm"`
	ShippingProfile  *string        `gorm:"column:shipping_profile"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
