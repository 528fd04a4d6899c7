package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/types"
)

// Sale is the immutable record of a completed checkout. Totals are
// denormalized at creation so receipts never depend on later catalog or
// settings changes.
type Sale struct {
	ID                 uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID            uuid.UUID        `gorm:"column:store_id;type:uuid;not null;uniqueIndex:ux_sales_store_number"`
	SaleNumber         int64            `gorm:"column:sale_number;not null;uniqueIndex:ux_sales_store_number"`
	RegisterID         string           `gorm:"column:register_id;not null"`
	CashierID          uuid.UUID        `gorm:"column:cashier_id;type:uuid;not null"`
	CustomerID         *uuid.UUID       `gorm:"column:customer_id;type:uuid"`
	Status             enums.SaleStatus `gorm:"column:status;type:sale_status;not null;default:'completed'"`
	Currency           enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents      int64            `gorm:"column:subtotal_cents;not null"`
	LineDiscountsCents int64            `gorm:"column:line_discounts_cents;not null;default:0"`
	OrderDiscount      *types.Discount  `gorm:"column:order_discount;type:discount_value"`
	OrderDiscountCents int64            `gorm:"column:order_discount_cents;not null;default:0"`
	TaxRatePct         decimal.Decimal  `gorm:"column:tax_rate_pct;type:numeric(5,2);not null;default:0"`
	TaxCents           int64            `gorm:"column:tax_cents;not null;default:0"`
	TotalCents         int64            `gorm:"column:total_cents;not null"`
	PaidCents          int64            `gorm:"column:paid_cents;not null"`
	ChangeCents        int64            `gorm:"column:change_cents;not null;default:0"`
	Notes              *string          `gorm:"column:notes"`
	VoidReason         *string          `gorm:"column:void_reason"`
	VoidedBy           *uuid.UUID       `gorm:"column:voided_by;type:uuid"`
	VoidedAt           *time.Time       `gorm:"column:voided_at"`
	Items              []SaleItem       `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	Payments           []SalePayment    `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
