package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// SalePayment is one tender entry of a split payment. CardReference
// carries the processor payment id for card tenders.
type SalePayment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID        uuid.UUID           `gorm:"column:sale_id;type:uuid;not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	AmountCents   int64               `gorm:"column:amount_cents;not null"`
	CardReference *string             `gorm:"column:card_reference"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
