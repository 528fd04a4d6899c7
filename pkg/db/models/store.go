package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// Store represents a retail location and the register settings every
// till in it inherits.
type Store struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name              string          `gorm:"column:name;not null"`
	Phone             *string         `gorm:"column:phone"`
	Email             *string         `gorm:"column:email"`
	AddressLine       *string         `gorm:"column:address_line"`
	City              *string         `gorm:"column:city"`
	Region            *string         `gorm:"column:region"`
	PostalCode        *string         `gorm:"column:postal_code"`
	Currency          enums.Currency  `gorm:"column:currency;type:text;not null;default:'USD'"`
	TaxRatePct        decimal.Decimal `gorm:"column:tax_rate_pct;type:numeric(5,2);not null;default:0"`
	MaxPaymentSplits  int             `gorm:"column:max_payment_splits;not null;default:4"`
	HeldOrderTTLHours int             `gorm:"column:held_order_ttl_hours;not null;default:72"`
	ReceiptFooter     *string         `gorm:"column:receipt_footer"`
	IsActive          bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
