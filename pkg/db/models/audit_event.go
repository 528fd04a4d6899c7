package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// AuditEvent is one append-only row in the store audit trail. Actor
// fields are nil when a background job performed the action.
type AuditEvent struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID    uuid.UUID         `gorm:"column:store_id;type:uuid;not null"`
	ActorID    *uuid.UUID        `gorm:"column:actor_id;type:uuid"`
	ActorRole  *enums.UserRole   `gorm:"column:actor_role;type:user_role"`
	Action     enums.AuditAction `gorm:"column:action;type:audit_action;not null"`
	EntityType string            `gorm:"column:entity_type;not null"`
	EntityID   string            `gorm:"column:entity_id;not null"`
	Meta       json.RawMessage   `gorm:"column:meta;type:jsonb"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
