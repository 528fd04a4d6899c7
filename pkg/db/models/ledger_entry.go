package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// LedgerEntry records an immutable cash drawer movement. Paid-outs and
// change given carry negative amounts.
type LedgerEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID             `gorm:"column:store_id;type:uuid;not null"`
	RegisterID  string                `gorm:"column:register_id;not null"`
	ActorUserID uuid.UUID             `gorm:"column:actor_user_id;type:uuid;not null"`
	Type        enums.LedgerEntryType `gorm:"column:type;type:ledger_entry_type;not null"`
	AmountCents int64                 `gorm:"column:amount_cents;not null"`
	SaleID      *uuid.UUID            `gorm:"column:sale_id;type:uuid"`
	Reason      *string               `gorm:"column:reason"`
	Metadata    json.RawMessage       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
