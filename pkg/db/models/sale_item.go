package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/types"
)

// SaleItem captures the snapshot of one line on a completed sale. SKU,
// name and price are copied from the catalog at checkout.
type SaleItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID         uuid.UUID       `gorm:"column:sale_id;type:uuid;not null"`
	ProductID      *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	SKU            string          `gorm:"column:sku;not null"`
	Name           string          `gorm:"column:name;not null"`
	UnitPriceCents int64           `gorm:"column:unit_price_cents;not null"`
	Qty            int             `gorm:"column:qty;not null"`
	LineDiscount   *types.Discount `gorm:"column:line_discount;type:discount_value"`
	DiscountCents  int64           `gorm:"column:discount_cents;not null;default:0"`
	TotalCents     int64           `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
